package telemetry

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

const report_dump_write = "dump.write"

// HttpDump receives every exchange of a client instrumented with DumpResty,
// rendered as plain text.
type HttpDump interface {
	Write(id string, contents string)
}

// DirectoryDump writes one file per exchange.
type DirectoryDump struct {
	directory string
	tel       API
}

// NewDirectoryDump empties dir (creating it if needed) before use.
func NewDirectoryDump(dir string, tel API) (DirectoryDump, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return DirectoryDump{}, err
	}
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return DirectoryDump{}, err
	}
	return DirectoryDump{directory: dir, tel: tel}, nil
}

func (d DirectoryDump) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(d.directory, id), []byte(contents), 0600)
	if err != nil {
		d.tel.ReportWarning(report_dump_write, err, id)
	}
}

// DumpResty hands every response of client, together with its request,
// to dump. Ids are numbered in the order the responses arrive.
func DumpResty(client *resty.Client, dump HttpDump) {
	var counter atomic.Uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := counter.Add(1)
		dump.Write(fmt.Sprintf("%04d_%s.txt", id, res.Request.Method), formatExchange(res))
		return nil
	})
}

func formatRequestBody(req *http.Request) string {
	if req == nil || req.GetBody == nil {
		return ""
	}
	body, err := req.GetBody()
	if err != nil {
		return fmt.Sprintf("failed to get request body: %s", err.Error())
	}
	if body == nil {
		return ""
	}
	defer body.Close()
	readBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("failed to read request body: %s", err.Error())
	}
	return string(readBody)
}

// 1: request method
// 2: request url
// 3: request headers in ("Key: Value" format)
// 4: request body
// 5: response status
// 6: response url
// 7: response headers in ("Key: Value" format)
// 8: response body
const exchangeTemplate = `---- REQUEST ----

%s %s

%s

%s

---- RESPONSE ----

%s %s

%s

%s`

func formatExchange(res *resty.Response) string {
	var requestHeaders http.Header
	if res.Request.RawRequest != nil {
		requestHeaders = res.Request.RawRequest.Header
	}

	responseUrl := res.Request.URL
	if res.RawResponse != nil {
		redirected, err := res.RawResponse.Location()
		if err == nil {
			responseUrl = redirected.String()
		}
	}

	return fmt.Sprintf(
		exchangeTemplate,

		res.Request.Method, res.Request.URL,
		formatHeaders(requestHeaders),
		formatRequestBody(res.Request.RawRequest),

		strconv.Itoa(res.StatusCode()), responseUrl,
		formatHeaders(res.Header()),
		res.String(),
	)
}
