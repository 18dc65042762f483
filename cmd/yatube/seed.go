package main

import (
	"context"
	"flag"
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"yatube/internal/logging"
	"yatube/internal/model"
	"yatube/internal/storage"
)

// seedGroup creates a group, or deletes it with -delete. Posts of a deleted
// group stay without a group.
func seedGroup(ctx context.Context, store *storage.Storage, args []string) error {
	fs := flag.NewFlagSet("seed-group", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	slug := fs.String("slug", "", "group slug (required)")
	title := fs.String("title", "", "group title, defaults to the slug")
	description := fs.String("description", "", "group description")
	remove := fs.Bool("delete", false, "delete the group instead of creating it")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *slug == "" {
		return errors.New("-slug is required")
	}

	if *remove {
		if err := store.DeleteGroup(ctx, *slug); err != nil {
			return errors.Wrapf(err, "failed to delete group %s", *slug)
		}
		logging.Logger.WithField("slug", *slug).Warn("Group deleted")
		return nil
	}

	if *title == "" {
		*title = *slug
	}
	group := &model.Group{Title: *title, Slug: *slug, Description: *description}
	if err := store.CreateGroup(ctx, group); err != nil {
		return errors.Wrapf(err, "failed to create group %s", *slug)
	}
	logging.Logger.WithFields(logrus.Fields{
		"id":   group.ID,
		"slug": group.Slug,
	}).Warn("Group created")
	return nil
}
