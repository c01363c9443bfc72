package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"grammarcheck/internal/config"
	"grammarcheck/internal/controller"
	"grammarcheck/internal/ignorelist"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List, deactivate and reactivate LanguageTool rules",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List deactivated rules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIgnoreList(func(_ context.Context, list *ignorelist.List) error {
				listRules(cmd.OutOrStdout(), list.Rules())
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "deactivate <rule-id> [description...]",
		Short: "Stop the server from reporting a rule",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rule := ignorelist.Rule{ID: args[0], Description: strings.Join(args[1:], " ")}
			return withIgnoreList(func(ctx context.Context, list *ignorelist.List) error {
				known := list.Has(rule.ID)
				if err := list.Add(ctx, rule); err != nil {
					return err
				}
				if known {
					fmt.Fprintf(cmd.OutOrStdout(), "rule %s already deactivated, description updated\n", rule.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deactivated rule %s\n", rule.ID)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "activate <rule-id>",
		Short: "Report a deactivated rule again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withIgnoreList(func(ctx context.Context, list *ignorelist.List) error {
				removed, err := list.Remove(ctx, args[0])
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("%w: %s", controller.ErrUnknownRule, args[0])
				}
				fmt.Fprintf(cmd.OutOrStdout(), "activated rule %s\n", args[0])
				return nil
			})
		},
	})

	return cmd
}

func withIgnoreList(fn func(ctx context.Context, list *ignorelist.List) error) error {
	ctx, cancel := setupContext()
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	list, release, err := openIgnoreList(ctx, cfg)
	if err != nil {
		return err
	}
	defer release()
	return fn(ctx, list)
}

func listRules(w io.Writer, rules []ignorelist.Rule) {
	if len(rules) == 0 {
		fmt.Fprintln(w, "no deactivated rules")
		return
	}
	width := 0
	for _, r := range rules {
		width = max(width, runewidth.StringWidth(r.ID))
	}
	for _, r := range rules {
		fmt.Fprintf(w, "%s  %s\n", ruleColor.Sprint(runewidth.FillRight(r.ID, width)), r.Description)
	}
}
