package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAttachCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Manage the PDF attached to a record",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "upload <kind> <id> <file.pdf>",
			Short: "Attach a PDF, replacing any previous one",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				schema, err := schemaArg(args[0])
				if err != nil {
					return err
				}
				_, client, err := a.session()
				if err != nil {
					return err
				}
				f, err := os.Open(args[2])
				if err != nil {
					return err
				}
				defer f.Close()
				rec, err := client.UploadAttachment(cmd.Context(), schema.Kind, args[1], args[2], f)
				if err != nil {
					return fmt.Errorf("upload attachment: %w", err)
				}
				success(a.out, fmt.Sprintf("Attached %s to %s %s", f.Name(), schema.Singular, rec.ID))
				if rec.FileLink != nil {
					fmt.Fprintln(a.out, renderKeyValue("Link", *rec.FileLink))
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "delete <kind> <id>",
			Short: "Remove the attachment of a record",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				schema, err := schemaArg(args[0])
				if err != nil {
					return err
				}
				_, client, err := a.session()
				if err != nil {
					return err
				}
				rec, err := client.DeleteAttachment(cmd.Context(), schema.Kind, args[1])
				if err != nil {
					return fmt.Errorf("delete attachment: %w", err)
				}
				success(a.out, fmt.Sprintf("Removed the attachment of %s %s", schema.Singular, rec.ID))
				return nil
			},
		},
	)
	return cmd
}
