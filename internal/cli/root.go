// Package cli implements the xmldef command line: one-shot lookups against
// a set of schemas, and the language server entry point.
package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/viant/afs"

	"github.com/0muji4/xmldef/internal/config"
	"github.com/0muji4/xmldef/internal/definition"
)

// Version is reported by the lsp command and --version.
const Version = "0.1.0"

// Command is the root xmldef command together with its global flags.
type Command struct {
	*cobra.Command

	fs         afs.Service
	configPath string
	schemas    []string
	scheme     string
	verbose    int
}

// New returns the root command; fs serves documents and schemas.
func New(fs afs.Service) *Command {
	c := &Command{fs: fs}
	c.Command = &cobra.Command{
		Use:   "xmldef",
		Short: "go to definition for XML documents described by XML Schema",
		Long: `xmldef resolves the element or attribute name under a cursor to the
XML Schema declaration that defines it.

Schemas come from the configuration file (--config or XMLDEF_CONFIG)
followed by every --schema flag, and are searched in that order.
`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := c.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "YAML configuration file (default $XMLDEF_CONFIG)")
	flags.StringArrayVar(&c.schemas, "schema", nil, "schema path or URL, may be repeated")
	flags.StringVar(&c.scheme, "scheme", "", "identifier scheme (default \""+config.DefaultScheme+"\")")
	flags.CountVarP(&c.verbose, "verbose", "v", "increase log verbosity")

	c.AddCommand(
		newResolveCmd(c),
		newLookupCmd(c),
		newShowCmd(c),
		newSchemasCmd(c),
		newLSPCmd(c),
	)
	return c
}

// config merges the configuration file with the global flags and applies
// its logging settings.
func (c *Command) config() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.FromEnv()
	}
	if err != nil {
		return nil, err
	}
	cfg.AddSchemas(c.schemas...)
	if c.scheme != "" {
		cfg.Scheme = c.scheme
	}
	if c.verbose > cfg.Log.Verbosity {
		cfg.Log.Verbosity = c.verbose
	}
	cfg.Log.Apply()
	return cfg, nil
}

func (c *Command) service(ctx context.Context) (*definition.Service, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, err
	}
	return definition.Build(ctx, cfg, c.fs)
}
