package deploy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/flarebyte/seshat-toolkit/internal/stage"
	"github.com/flarebyte/seshat-toolkit/internal/toolbox"
)

// renderResult writes the run outcome to w: a single human-readable line by
// default, or the full record envelope as one JSON line.
func renderResult(w io.Writer, out stage.Envelope, asJSON bool) error {
	if asJSON {
		stage.SortErrors(&out)
		s, err := encodeJSON(out)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, s)
		return err
	}
	res := out.Result()
	if res.Clean() {
		_, err := fmt.Fprintf(w, "ok: %d deployed, %d included\n", len(res.Resolved), len(res.Included))
		return err
	}
	failing := len(toolbox.Failing(res.Resolved)) + len(toolbox.Failing(res.Included))
	_, err := fmt.Fprintf(w, "degraded: %d of %d toolboxes failing\n",
		failing, len(res.Resolved)+len(res.Included))
	return err
}

// encodeJSON returns the JSON encoding string with HTML escaping disabled.
func encodeJSON(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return buf.String(), nil
}
