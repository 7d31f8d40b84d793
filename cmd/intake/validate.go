package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alpha-nc/intake/pkg/schema"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the questionnaire schema",
	Long:  `Checks the structural invariants of a schema document: step ordering, page numbering, field IDs, condition references.`,
	Run: func(cmd *cobra.Command, args []string) {
		schemaPath, _ := cmd.Flags().GetString("schema")

		sch, err := schema.Load(schemaPath)
		if err != nil {
			fmt.Printf("Schema invalid: %v\n", err)
			os.Exit(1)
		}

		fields := 0
		for _, st := range sch.Steps {
			fields += len(st.Fields)
		}
		fmt.Printf("Schema OK: version %s, %d steps, %d pages, %d fields\n",
			sch.Version, len(sch.Steps), sch.TotalPages(), fields)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
