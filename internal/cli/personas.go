package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/argus/internal/model"
)

// personasCmd lists the critic personas
var personasCmd = &cobra.Command{
	Use:   "personas",
	Short: "List available critic personas",
	Run: func(cmd *cobra.Command, args []string) {
		for _, p := range model.Personas() {
			fmt.Printf("%-15s %s\n", p, model.PersonaDescriptions[p])
		}
	},
}

// stancesCmd lists the analysis stances
var stancesCmd = &cobra.Command{
	Use:   "stances",
	Short: "List available analysis stances",
	Run: func(cmd *cobra.Command, args []string) {
		for _, s := range model.Stances() {
			fmt.Printf("%-10s %s\n", s, model.StanceDescriptions[s])
		}
	},
}

func init() {
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(stancesCmd)
}
