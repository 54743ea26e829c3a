package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mberliner/reflexio/internal/bench/spec"
	"github.com/mberliner/reflexio/pkg/schema"
)

const schemaBaseID = "https://schemas.reflexio.dev"

func schemaCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:         "schema",
		Short:       "Print the JSON Schema of the task descriptor",
		Annotations: map[string]string{annotationNoSpec: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			gen := schema.NewGenerator(schema.WithNameTag("yaml"), schema.WithBaseID(schemaBaseID))
			doc, err := gen.GenerateJSONSchema(spec.TaskSpec{})
			if err != nil {
				return err
			}
			doc = append(doc, '\n')

			if out == "" {
				_, err = cmd.OutOrStdout().Write(doc)
				return err
			}
			if err := os.WriteFile(out, doc, 0o644); err != nil {
				return fmt.Errorf("write schema: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated JSON schema: %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the schema to this file instead of stdout")
	return cmd
}
