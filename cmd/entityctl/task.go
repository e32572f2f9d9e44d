package main

import (
	"github.com/cockroachdb/errors"
	"github.com/reuben-baek/entity-service/domain"
	"github.com/reuben-baek/entity-service/service"
	"github.com/spf13/cobra"
)

func newTaskCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage tasks, their comments and attachments",
	}

	var title, description string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			task := a.container.Tasks.CreateNew()
			task.Title = title
			task.Description = description
			if err := a.container.Tasks.Save(cmd.Context(), task); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), task.ToMap())
		},
	}
	create.Flags().StringVar(&title, "title", "", "task title")
	create.Flags().StringVar(&description, "description", "", "task description")
	_ = create.MarkFlagRequired("title")

	get := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := a.container.Tasks.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if task == nil {
				return errors.Mark(errors.Newf("task %d not found", id), service.EntityNotFoundError)
			}
			return printJSON(cmd.OutOrStdout(), task.ToMap())
		},
	}

	var page, limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List tasks page by page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.container.Tasks.Paginate(cmd.Context(), page, limit)
			if err != nil {
				return err
			}
			items := make([]map[string]any, 0, len(result.Items))
			for _, task := range result.Items {
				items = append(items, task.ToMap())
			}
			return printJSON(cmd.OutOrStdout(), map[string]any{
				"items":      items,
				"page":       result.Page,
				"limit":      result.Limit,
				"total":      result.Total,
				"page_count": result.PageCount(),
			})
		},
	}
	list.Flags().IntVar(&page, "page", 1, "page number, starting at 1")
	list.Flags().IntVar(&limit, "limit", 0, "page size, 0 for the default")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.container.Tasks.Delete(cmd.Context(), id)
		},
	}

	var system bool
	comment := &cobra.Command{
		Use:   "comment <id> <message>",
		Short: "Comment on a task",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var opts []service.CommentOption
			if system {
				opts = append(opts, service.AsSystem())
			}
			message, err := a.container.Tasks.AddComment(cmd.Context(), id, service.Actor{}, args[1], opts...)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), message.ToMap())
		},
	}
	comment.Flags().BoolVar(&system, "system", false, "mark the comment as a system message")

	var fileName, contentType string
	var size int64
	attach := &cobra.Command{
		Use:   "attach <id>",
		Short: "Attach a file record to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			attachment := &domain.Attachment{FileName: fileName, ContentType: contentType, Size: size}
			if err := a.container.Tasks.AddAttachment(cmd.Context(), id, service.Actor{}, attachment); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), attachment.ToMap())
		},
	}
	attach.Flags().StringVar(&fileName, "file", "", "file name")
	attach.Flags().StringVar(&contentType, "content-type", "application/octet-stream", "content type")
	attach.Flags().Int64Var(&size, "size", 0, "size in bytes")
	_ = attach.MarkFlagRequired("file")

	cmd.AddCommand(create, get, list, remove, comment, attach)
	return cmd
}
