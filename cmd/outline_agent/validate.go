package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/outline-ranker/internal/schemas"
	bundled "github.com/jonathan/outline-ranker/schemas"
)

var (
	validateSchema string
	validateJSON   string
)

// schemaAliases maps the --schema shorthands to bundled schema files
var schemaAliases = map[string]string{
	"outline":           bundled.Outline,
	"collection_input":  bundled.CollectionInput,
	"collection_output": bundled.CollectionOutput,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a JSON file against a bundled schema",
	Long:  "Validates an outline, collection input, or collection output file. Accepts the schema shorthands outline, collection_input, and collection_output, or a bundled schema file name.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		name, ok := schemaAliases[validateSchema]
		if !ok {
			name = validateSchema
		}

		err := schemas.ValidateFile(name, validateJSON)
		var verr *schemas.ValidationError
		switch {
		case err == nil:
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Validation passed: %s matches %s\n", validateJSON, name)
			return nil
		case errors.As(err, &verr):
			_, _ = fmt.Fprint(cmd.OutOrStdout(), "Validation failed:\n")
			for i, fe := range verr.Errors {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s: %s\n", i+1, fe.Field, fe.Message)
			}
			return fmt.Errorf("%s does not match %s", validateJSON, name)
		default:
			return err
		}
	},
}

func init() {
	validateCmd.Flags().StringVarP(&validateSchema, "schema", "s", "", "Schema to validate against (required)")
	validateCmd.Flags().StringVarP(&validateJSON, "json", "j", "", "JSON file to validate (required)")

	if err := validateCmd.MarkFlagRequired("schema"); err != nil {
		panic(fmt.Sprintf("failed to mark schema flag as required: %v", err))
	}
	if err := validateCmd.MarkFlagRequired("json"); err != nil {
		panic(fmt.Sprintf("failed to mark json flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}
