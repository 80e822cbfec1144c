package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sakinah-dev/sakinah/internal/errors"
	"github.com/sakinah-dev/sakinah/pkg/devtools"
	"github.com/sakinah-dev/sakinah/pkg/scale"
)

func scaleCmd(root *rootOptions) *cobra.Command {
	var (
		factor float64
		width  float64
		height float64
		ratio  float64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "scale <size>",
		Short: "Preview responsive sizes",
		Long: `Scale a design size for the configured screen.

The screen comes from sakinah.json and SAKINAH_SCREEN_* variables. Flags
override individual dimensions.

Examples:
  sakinah scale 16
  sakinah scale 16 --width 390 --height 844
  sakinah scale 24 --factor 0.3 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			size, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.New("E300").WithDetailf("size %q is not a number", args[0])
			}

			cfg, err := loadConfig(root)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("width") {
				cfg.Screen.Width = width
			}
			if cmd.Flags().Changed("height") {
				cfg.Screen.Height = height
			}
			if cmd.Flags().Changed("ratio") {
				cfg.Screen.PixelRatio = ratio
			}
			g, err := cfg.ScreenGeometry()
			if err != nil {
				return err
			}

			res := devtools.Compute(scale.New(g), size, factor)
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(w, "Screen %gx%g @%gx (reference %gx%g)\n\n",
				g.Screen.Width, g.Screen.Height, g.PixelRatio, g.Reference.Width, g.Reference.Height)
			info(w, "scale            %.2f", res.Scale)
			info(w, "verticalScale    %.2f", res.VerticalScale)
			info(w, "moderateScale    %.2f (factor %g)", res.ModerateScale, res.Factor)
			info(w, "responsiveFont   %.2f", res.ResponsiveFontSize)
			return nil
		},
	}

	cmd.Flags().Float64Var(&factor, "factor", scale.DefaultModerateFactor, "Moderate scale factor")
	cmd.Flags().Float64Var(&width, "width", 0, "Screen width override")
	cmd.Flags().Float64Var(&height, "height", 0, "Screen height override")
	cmd.Flags().Float64Var(&ratio, "ratio", 0, "Pixel ratio override")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
