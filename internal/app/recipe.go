package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/pkgensure/internal/config"
	"github.com/blackwell-systems/pkgensure/internal/output"
)

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Show the recipe that apply would use",
	Long: `Print the checks of the effective recipe: --recipe if given, otherwise
~/.config/pkgensure/recipe.toml if it exists, otherwise the built-in recipe.`,
	Args: cobra.NoArgs,
	RunE: runRecipe,
}

func runRecipe(cmd *cobra.Command, args []string) error {
	recipe, source, err := config.Resolve(recipePath)
	if err != nil {
		return fmt.Errorf("failed to load recipe: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), output.RenderRecipeTable(source, recipe.Checks))
	return nil
}
