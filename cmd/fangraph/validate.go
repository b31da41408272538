package main

import (
	"fmt"
	"os"

	"github.com/aretw0/fangraph/pkg/config"
	"github.com/aretw0/fangraph/pkg/domain"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Check config files for consistency",
	Long: `Decodes and validates config files: field ranges, unique names, known inputs,
input kinds and arity. Without arguments, every config of the store is checked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		failed := 0
		report := func(name string, err error) {
			if err == nil {
				fmt.Fprintf(out, "%s: ok\n", name)
				return
			}
			failed++
			fmt.Fprintf(out, "%s:\n", name)
			errs := domain.ValidationErrors(err)
			if errs == nil {
				errs = []error{err}
			}
			for _, e := range errs {
				fmt.Fprintf(out, "  - %v\n", e)
			}
		}

		if len(args) > 0 {
			for _, path := range args {
				report(path, validateFile(path))
			}
		} else {
			st := openStores(cmd)
			defer st.Close()

			names, err := st.configs.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				cfg, err := st.configs.Load(cmd.Context(), name)
				if err == nil {
					err = cfg.Validate()
				}
				report(name, err)
			}
		}

		if failed > 0 {
			return fmt.Errorf("%d config(s) failed validation", failed)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	cfg, err := config.Decode(data, config.FormatFromPath(path))
	if err != nil {
		return err
	}
	return cfg.Validate()
}
