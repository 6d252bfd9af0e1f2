package collector

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html"

	"StockScreener/internal/model"
)

const crumbStoreKey = `"CrumbStore":`

// crumbStore is the object Yahoo embeds in the page state under "CrumbStore".
type crumbStore struct {
	Crumb string `json:"crumb"`
}

// ExtractCrumb scans the inline scripts of a quote page for the CrumbStore
// object and returns its crumb.
func ExtractCrumb(r io.Reader) (string, error) {
	z := html.NewTokenizer(r)
	inScript := false
	for {
		switch z.Next() {
		case html.ErrorToken:
			if err := z.Err(); err != nil && !errors.Is(err, io.EOF) {
				return "", fmt.Errorf("%w: %w", model.ErrTokenNotFound, err)
			}
			return "", model.ErrTokenNotFound
		case html.StartTagToken:
			name, _ := z.TagName()
			inScript = string(name) == "script"
		case html.EndTagToken, html.SelfClosingTagToken:
			inScript = false
		case html.TextToken:
			if !inScript {
				continue
			}
			if crumb, ok := crumbFromScript(z.Text()); ok {
				return crumb, nil
			}
		}
	}
}

func crumbFromScript(text []byte) (string, bool) {
	key := []byte(crumbStoreKey)
	for {
		i := bytes.Index(text, key)
		if i < 0 {
			return "", false
		}
		text = text[i+len(key):]

		var store crumbStore
		if err := json.NewDecoder(bytes.NewReader(text)).Decode(&store); err != nil {
			continue
		}
		if store.Crumb != "" {
			return store.Crumb, true
		}
	}
}
