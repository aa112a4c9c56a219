package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/0muji4/xmldef/internal/definition"
	"github.com/0muji4/xmldef/internal/location"
	"github.com/0muji4/xmldef/internal/lsp"
	"github.com/0muji4/xmldef/internal/schema"
	"github.com/0muji4/xmldef/internal/workspace"
)

func newResolveCmd(c *Command) *cobra.Command {
	var offset, line, character int
	cmd := &cobra.Command{
		Use:   "resolve FILE",
		Short: "print the definition of the name at a position in FILE",
		Long: `Resolve prints the definition of the element or attribute name at a
position of FILE as JSON. The position is either a byte offset, or a
zero-based line and UTF-16 character as used by editors.

A name without a declaration still resolves, to an identifier whose
content explains that nothing was found. Comments, text and attribute
values are not resolvable and fail.
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, err := c.service(ctx)
			if err != nil {
				return err
			}
			text, err := workspace.NewFSReader("", c.fs).ReadURL(ctx, schema.NormalizeURL(args[0]))
			if err != nil {
				return err
			}

			var result location.Result
			switch {
			case cmd.Flags().Changed("offset"):
				result, err = service.Find(ctx, text, offset)
			case cmd.Flags().Changed("line"):
				result, err = service.FindAt(ctx, text, line, character)
			default:
				return errors.New("either --offset or --line is required")
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "zero-based byte offset")
	cmd.Flags().IntVar(&line, "line", 0, "zero-based line")
	cmd.Flags().IntVar(&character, "character", 0, "zero-based UTF-16 character within --line")
	cmd.MarkFlagsMutuallyExclusive("offset", "line")
	return cmd
}

func newLookupCmd(c *Command) *cobra.Command {
	var kind string
	cmd := &cobra.Command{
		Use:   "lookup NAME",
		Short: "print the definition of an element or attribute name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := service.Resolve(definition.SymbolKind(kind), args[0])
			if err != nil {
				return err
			}
			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(result)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(definition.ElementKind), "element or attribute")
	return cmd
}

func newShowCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "show IDENTIFIER",
		Short: "print the document behind a definition identifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			text, err := service.Content(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !strings.HasSuffix(text, "\n") {
				text += "\n"
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), text)
			return err
		},
	}
}

func newSchemasCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "list the loaded schemas in lookup order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, source := range service.Schemas() {
				attributes := 0
				for _, tag := range source.Tags {
					attributes += len(tag.Attributes)
				}
				fmt.Fprintf(out, "%s\t%d elements\t%d attributes\n", source.URI, len(source.Tags), attributes)
			}
			return nil
		},
	}
}

func newLSPCmd(c *Command) *cobra.Command {
	return &cobra.Command{
		Use:   "lsp",
		Short: "run the language server over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			service, err := c.service(cmd.Context())
			if err != nil {
				return err
			}
			return lsp.NewServer("xmldef", Version, service, service.Registry()).RunStdio()
		},
	}
}
