package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/hay-kot/commentrank/internal/tui/jsoncolor"
	"github.com/hay-kot/commentrank/pkg/iojson"
)

// writeJSON prints v to the root writer, highlighted when it is a terminal.
func writeJSON(c *cli.Command, v any) error {
	root := c.Root()

	if f, ok := root.Writer.(*os.File); ok && isTerminal(f) {
		bits, err := json.Marshal(v)
		if err != nil {
			return iojson.WriteWith(root.Writer, root.ErrWriter, v)
		}
		_, err = fmt.Fprintln(f, jsoncolor.Colorize(bits))
		return err
	}

	return iojson.WriteWith(root.Writer, root.ErrWriter, v)
}
