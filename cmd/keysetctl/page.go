package main

import (
	"encoding/json"
	"fmt"

	"github.com/Alp4ka/keysetpager"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type pageOutput struct {
	Items        []map[string]any     `json:"items"`
	Cursors      []string             `json:"cursors"`
	PageInfo     keysetpager.PageInfo `json:"pageInfo"`
	HasMore      bool                 `json:"hasMore"`
	AppliedLimit int                  `json:"appliedLimit"`
	Strategy     keysetpager.Strategy `json:"strategy"`
}

func newPageCmd(a *app) *cobra.Command {
	var (
		first, last   int
		after, before string
	)

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Prints one page of the table as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args := keysetpager.PageArgs{After: after, Before: before}
			if cmd.Flags().Changed("first") {
				args.First = lo.ToPtr(first)
			}
			if cmd.Flags().Changed("last") {
				args.Last = lo.ToPtr(last)
			}

			db, err := a.openDB()
			if err != nil {
				return err
			}

			rel, getters := a.relation(db)
			page, err := a.pager(getters).Paginate(cmd.Context(), rel, args)
			if err != nil {
				return fmt.Errorf("cannot fetch page: %w", err)
			}

			log.WithFields(log.Fields{
				"strategy": page.Strategy,
				"rows":     len(page.Items),
			}).Debug("page fetched")

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")

			return enc.Encode(pageOutput{
				Items:        page.Items,
				Cursors:      page.Cursors,
				PageInfo:     page.PageInfo,
				HasMore:      page.HasMore,
				AppliedLimit: page.AppliedLimit,
				Strategy:     page.Strategy,
			})
		},
	}

	cmd.Flags().IntVar(&first, "first", keysetpager.DefaultLimit, "page size when paging forward")
	cmd.Flags().IntVar(&last, "last", keysetpager.DefaultLimit, "page size when paging backward")
	cmd.Flags().StringVar(&after, "after", "", "return rows following this cursor")
	cmd.Flags().StringVar(&before, "before", "", "return rows preceding this cursor")

	return cmd
}
