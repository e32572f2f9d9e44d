package main

import (
	"strconv"

	"github.com/cockroachdb/errors"
)

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 0)
	if err != nil || id == 0 {
		return 0, errors.Newf("invalid id %q", arg)
	}
	return uint(id), nil
}
