// mcp.go runs internal/mcpserver over stdio, replacing the teacher's
// cmd/mcp.go (which published only CLI usage instructions as an MCP
// prompt) with a server that exposes search/render/skelebuild_status as
// real, callable tools.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Alb-O/ripdoc/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run as an MCP server over stdio",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	loader := newCrateLoader(cfg, nil)
	return mcpserver.NewServer(loader).Run()
}
