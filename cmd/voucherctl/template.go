package main

import (
	"fmt"
	"os"

	"github.com/sanad/backend/internal/infrastructure/voucherpdf"
	"github.com/spf13/cobra"
)

func templateCmd() *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write the development voucher template",
		Long: `Template writes a single-page AcroForm PDF carrying every field the
renderer binds. Use it for local runs or as a layout reference when
designing the production template.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data := voucherpdf.DevTemplate()
			tpl, err := voucherpdf.NewTemplate(data)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", outPath, err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d fields)\n", outPath, len(tpl.FieldNames()))
			return err
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "voucher.pdf", "output PDF path")
	return cmd
}

func fieldsCmd() *cobra.Command {
	var templatePath string

	cmd := &cobra.Command{
		Use:   "fields",
		Short: "List the form fields of a template",
		Long: `Fields prints every field name found in the template and reports the
text fields the renderer binds that the template does not define.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tpl, err := voucherpdf.LoadTemplate(templatePath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range tpl.FieldNames() {
				if _, err := fmt.Fprintln(out, name); err != nil {
					return err
				}
			}

			missing := tpl.MissingFields()
			if len(missing) == 0 {
				return nil
			}
			if _, err := fmt.Fprintln(out, "\nMissing fields:"); err != nil {
				return err
			}
			for _, name := range missing {
				if _, err := fmt.Fprintf(out, "  %s\n", name); err != nil {
					return err
				}
			}
			return fmt.Errorf("template lacks %d required fields", len(missing))
		},
	}
	cmd.Flags().StringVar(&templatePath, "template", "", "template PDF to inspect")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}
