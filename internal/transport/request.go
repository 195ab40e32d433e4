package transport

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/placelink/placelink/pkg/errors"
	"github.com/placelink/placelink/pkg/logging"
)

// maxErrorBody bounds how much of an error response ends up in messages.
const maxErrorBody = 512

// ReadBody reads and closes the response body. Any status outside 2xx is
// returned as an APIError carrying the start of the body.
func ReadBody(resp *http.Response, service string) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn().Err(err).Str("service", service).Msg("Failed to close response body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapIO("read", "response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxErrorBody {
			msg = msg[:maxErrorBody]
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		endpoint := ""
		if resp.Request != nil && resp.Request.URL != nil {
			endpoint = resp.Request.URL.Redacted()
		}
		return body, &errors.APIError{
			Service:    service,
			StatusCode: resp.StatusCode,
			Message:    msg,
			Endpoint:   endpoint,
		}
	}

	return body, nil
}

// DecodeResponse decodes a JSON response into the target structure.
func DecodeResponse(resp *http.Response, service string, target any) error {
	body, err := ReadBody(resp, service)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, target); err != nil {
		return errors.WrapParse("json", service+" response", err)
	}
	return nil
}
