package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/augmedical/pkg/pipeline"
)

// transformsCommand creates the command listing the transform kinds a
// pipeline config can name.
func (c *CLI) transformsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "transforms",
		Short: "List available transform kinds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println(StyleTitle.Render("Transform kinds"))
			kinds := pipeline.Kinds()
			fmt.Println(kindsTable(kinds))
			printDetail("Scalable kinds follow the randaugment intensity m.")
			for _, k := range kinds {
				if k.Unbounded {
					printDetail("%s writes values outside [0, 1] and needs format = %q.", k.Name, pipeline.FormatNPY)
				}
			}
			return nil
		},
	}
}

// kindsTable renders one row per kind with its config fields.
func kindsTable(kinds []pipeline.KindInfo) string {
	rows := make([][]string, len(kinds))
	for i, k := range kinds {
		scalable := ""
		if k.Scalable {
			scalable = "yes"
		}
		rows[i] = []string{k.Name, k.Description, scalable, strings.Join(k.Fields, ", ")}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Kind", "Description", "Scalable", "Fields").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case col == 0:
				return StyleHighlight
			case col == 3:
				return StyleDim
			default:
				return lipgloss.NewStyle()
			}
		}).
		String()
}
