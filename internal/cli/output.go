package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/brendan.keane/urlquery/internal/config"
	"github.com/brendan.keane/urlquery/internal/errors"
	"github.com/brendan.keane/urlquery/pkg/urlquery"
)

// writeURL prints a decomposed URL in the configured output format. The url
// format recomposes it with inst.
func writeURL(w io.Writer, cfg *config.Config, inst *urlquery.Instance, title string, u urlquery.URLWithQueryParams) error {
	switch cfg.Output {
	case config.OutputPretty:
		_, err := fmt.Fprint(w, RenderURL(title, u))
		return err
	case config.OutputURL:
		s, err := inst.Stringify(u.BaseURL, u.QueryParams)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, s)
		return err
	default:
		return writeJSON(w, u)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode output")
	}
	return nil
}
