package main

import (
	"encoding/json"
	"fmt"

	"github.com/Alp4ka/keysetpager"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newWalkCmd(a *app) *cobra.Command {
	var (
		pageSize int
		after    string
	)

	cmd := &cobra.Command{
		Use:   "walk",
		Short: "Follows after cursors to the end of the table, printing rows as JSON lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pageSize <= 0 {
				return fmt.Errorf("page size must be positive, got %d", pageSize)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}

			rel, getters := a.relation(db)
			pager := a.pager(getters)
			enc := json.NewEncoder(cmd.OutOrStdout())

			args := keysetpager.PageArgs{First: lo.ToPtr(pageSize), After: after}
			for pages, rows := 1, 0; ; pages++ {
				page, err := pager.Paginate(cmd.Context(), rel, args)
				if err != nil {
					return fmt.Errorf("cannot fetch page %d: %w", pages, err)
				}

				for _, item := range page.Items {
					if err := enc.Encode(item); err != nil {
						return err
					}
				}
				rows += len(page.Items)

				if !page.PageInfo.HasNextPage {
					log.WithFields(log.Fields{
						"pages":    pages,
						"rows":     rows,
						"strategy": page.Strategy,
					}).Info("walk finished")

					return nil
				}

				args.After = page.PageInfo.EndCursor
			}
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", keysetpager.DefaultLimit, "rows per page")
	cmd.Flags().StringVar(&after, "after", "", "start after this cursor")

	return cmd
}
