package commands

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"valence/internal/routes"

	"github.com/spf13/cobra"
)

var remapHint *string

func init() {
	remapHint = remapCmd.Flags().String("kind", "", "Skip matching and remap the url as this kind of page.")
	rootCmd.AddCommand(remapCmd)
	rootCmd.AddCommand(externalCmd)
}

func formatParams(params routes.Params) string {
	keys := make([]string, 0, len(params))
	for key := range params {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, key := range keys {
		parts[i] = fmt.Sprintf("%s=%s", key, params[key])
	}
	return strings.Join(parts, " ")
}

var remapCmd = &cobra.Command{
	Use:   "remap <lms-url> [--kind <kind>]",
	Short: "Translates an LMS url into its internal route.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hint := routes.Kind(*remapHint)
		if hint == "" {
			m, ok := routes.Match(args[0])
			if !ok {
				return fmt.Errorf("no route matches '%s'", args[0])
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", m.Kind, formatParams(m.Params))
		}
		path, ok := routes.Remap(args[0], hint, nil)
		if !ok {
			return fmt.Errorf("could not remap '%s'", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var externalCmd = &cobra.Command{
	Use:   "external <internal-path>",
	Short: "Translates an internal route back into an LMS url.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var base *url.URL
		if raw := getState(cmd.Context()).cfg.BaseUrl; raw != "" {
			parsed, err := url.Parse(raw)
			if err != nil {
				return err
			}
			base = parsed
		}
		link, ok := routes.External(base, args[0])
		if !ok {
			return fmt.Errorf("'%s' is not an internal route", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), link)
		return nil
	},
}
