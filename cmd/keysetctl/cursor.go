package main

import (
	"encoding/json"

	"github.com/Alp4ka/keysetpager"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

type cursorElementOutput struct {
	Column string  `json:"column"`
	Value  *string `json:"value"`
}

func newCursorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspects cursor tokens",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "decode TOKEN",
		Short: "Prints the column values a cursor token carries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cursor, err := keysetpager.DecodeCursor(args[0])
			if err != nil {
				return err
			}

			out := lo.Map(cursor.Elements(), func(item keysetpager.CursorElement, _ int) cursorElementOutput {
				return cursorElementOutput{Column: item.Column, Value: item.Value}
			})

			return json.NewEncoder(cmd.OutOrStdout()).Encode(out)
		},
	})

	return cmd
}
