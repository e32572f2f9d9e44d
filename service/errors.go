package service

import (
	"github.com/cockroachdb/errors"
	"github.com/reuben-baek/entity-service/domain"
)

var (
	CapabilityViolationError = errors.New("capability violation")
	EntityNotFoundError      = errors.New("entity not found")
)

func capabilityViolation(entityType string, capability domain.Capability) error {
	err := errors.Newf("%s is not implementing %s interface", entityType, capability)
	err = errors.WithHintf(err, "register %s with domain.Capability%s", entityType, capability)
	return errors.Mark(err, CapabilityViolationError)
}

func entityNotFound(entityType string, id uint) error {
	return errors.Mark(errors.Newf("%s %d not found", entityType, id), EntityNotFoundError)
}
