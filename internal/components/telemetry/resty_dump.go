package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const redacted = "[redacted]"

// headers and form fields whose values never reach the disk
var (
	secretHeaders = map[string]bool{
		"Cookie":     true,
		"Set-Cookie": true,
	}
	secretFields = map[string]bool{
		"password": true,
	}
)

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response headers in ("Key: Value" format)
// 7: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s

%s

%s
`

// DumpResty writes every exchange the client makes into its own file under
// dir, which is how raw portal pages get captured for test fixtures.
// Cookies and passwords are redacted.
func DumpResty(client *resty.Client, dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create dump dir: %w", err)
	}
	var counter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := atomic.AddUint64(&counter, 1)
		name := filepath.Join(dir, fmt.Sprintf("%04d.txt", id))
		err := os.WriteFile(name, []byte(formatExchange(res)), 0o600)
		if err != nil {
			slog.Warn("failed to write exchange dump", "file", name, "err", err)
		}
		return nil
	})
	return nil
}

func formatHeaders(headers http.Header) string {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := []string{}
	for _, k := range keys {
		for _, v := range headers[k] {
			if secretHeaders[http.CanonicalHeaderKey(k)] {
				v = redacted
			}
			lines = append(lines, fmt.Sprintf("%s: %s", k, v))
		}
	}
	return strings.Join(lines, "\n")
}

func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if body == nil || body == http.NoBody {
		return ""
	}
	defer body.Close()
	raw, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return string(raw)
	}
	for field := range form {
		if secretFields[field] {
			form.Set(field, redacted)
		}
	}
	return form.Encode()
}

func formatExchange(res *resty.Response) string {
	var requestHeaders http.Header
	if raw := res.Request.RawRequest; raw != nil {
		requestHeaders = raw.Header
	}
	return fmt.Sprintf(
		exchangeTemplate,

		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		formatRequestBody(res.Request.RawRequest),

		strconv.Itoa(res.StatusCode()),
		formatHeaders(res.Header()),
		res.String(),
	)
}
