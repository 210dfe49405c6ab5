/*
Copyright 2018 Iguazio Systems Ltd.

Licensed under the Apache License, Version 2.0 (the "License") with
an addition restriction as set forth herein. You may not use this
file except in compliance with the License. You may obtain a copy of
the License at http://www.apache.org/licenses/LICENSE-2.0.

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
implied. See the License for the specific language governing
permissions and limitations under the License.

In addition, you may not use the software for any purposes that are
illegal under applicable law, and the grant of the foregoing license
under the Apache 2.0 license is conditioned upon your compliance with
such restriction.
*/

package http

import (
	"bytes"
	"net/http"
	neturl "net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/nuclio/logger"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"

	"github.com/v3io/tabular"
)

// Client is the transform service HTTP client
type Client struct {
	url        *neturl.URL
	logger     logger.Logger
	httpClient *fasthttp.Client
	timeout    time.Duration
}

// NewClient returns a new HTTP client, timeout of 0 means no timeout
func NewClient(url string, timeout time.Duration, logger logger.Logger) (*Client, error) {
	var err error
	if logger == nil {
		logger, err = tabular.NewLogger("info")
		if err != nil {
			return nil, errors.Wrap(err, "can't create logger")
		}
	}

	if url == "" {
		return nil, errors.New("empty URL")
	}

	netURL, err := neturl.Parse(url)
	if err != nil {
		return nil, errors.Wrap(err, "bad URL")
	}

	if netURL.Scheme == "" {
		netURL.Scheme = "http"
	}

	client := &Client{
		url:        netURL,
		logger:     logger.GetChild("client"),
		httpClient: &fasthttp.Client{},
		timeout:    timeout,
	}

	return client, nil
}

// WithHTTPClient replaces the underlying fasthttp client
func (c *Client) WithHTTPClient(httpClient *fasthttp.Client) *Client {
	c.httpClient = httpClient
	return c
}

// Status returns the server state
func (c *Client) Status() (string, error) {
	body, err := c.call("/_/status", nil, nil, http.MethodGet)
	if err != nil {
		return "", err
	}

	var status struct {
		State string `json:"state"`
	}
	if err := json.Unmarshal(body, &status); err != nil {
		return "", errors.Wrap(err, "can't decode status")
	}

	return status.State, nil
}

// TransposeToJSON collapses columns of frame into the dest JSON column
func (c *Client) TransposeToJSON(frame tabular.Frame, columns []string, dest string) (tabular.Frame, error) {
	args := map[string]string{
		"columns": strings.Join(columns, ","),
		"dest":    dest,
	}

	return c.callOne("/transpose", args, frame)
}

// Partition splits frame into chunks of size rows
func (c *Client) Partition(frame tabular.Frame, size int) ([]tabular.Frame, error) {
	args := map[string]string{
		"size": strconv.Itoa(size),
	}

	return c.callFrames("/partition", args, frame)
}

// Join joins frames on keys, how is inner, left or cross
func (c *Client) Join(frames []tabular.Frame, keys []string, how string) (tabular.Frame, error) {
	args := map[string]string{
		"keys": strings.Join(keys, ","),
		"how":  how,
	}

	return c.callOne("/join", args, frames...)
}

// Union stacks the rows of frames
func (c *Client) Union(frames []tabular.Frame) (tabular.Frame, error) {
	return c.callOne("/union", nil, frames...)
}

func (c *Client) callOne(path string, args map[string]string, frames ...tabular.Frame) (tabular.Frame, error) {
	out, err := c.callFrames(path, args, frames...)
	if err != nil {
		return nil, err
	}

	if len(out) != 1 {
		return nil, errors.Errorf("%s: expected one frame, got %d", path, len(out))
	}

	return out[0], nil
}

func (c *Client) callFrames(path string, args map[string]string, frames ...tabular.Frame) ([]tabular.Frame, error) {
	var buf bytes.Buffer
	enc := tabular.NewEncoder(&buf)
	for i, frame := range frames {
		if err := enc.Encode(frame); err != nil {
			return nil, errors.Wrapf(err, "can't encode frame %d", i)
		}
	}

	body, err := c.call(path, args, buf.Bytes(), http.MethodPost)
	if err != nil {
		return nil, err
	}

	return tabular.NewDecoder(bytes.NewReader(body)).DecodeAll()
}

func (c *Client) call(path string, args map[string]string, body []byte, method string) ([]byte, error) {
	httpRequest := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(httpRequest)
	httpResponse := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(httpResponse)

	httpRequest.URI().SetScheme(c.url.Scheme)
	httpRequest.URI().SetHost(c.url.Host)
	httpRequest.URI().SetPath(c.url.Path + path)
	for key, value := range args {
		if value != "" {
			httpRequest.URI().QueryArgs().Set(key, value)
		}
	}
	httpRequest.Header.SetMethod(method)
	if body != nil {
		httpRequest.Header.SetContentType(MsgpackContentType)
		httpRequest.SetBody(body)
	}

	var err error
	if c.timeout > 0 {
		err = c.httpClient.DoTimeout(httpRequest, httpResponse, c.timeout)
	} else {
		err = c.httpClient.Do(httpRequest, httpResponse)
	}
	if err != nil {
		return nil, errors.Wrap(err, "Failed to call API")
	}

	requestID := string(httpResponse.Header.Peek(RequestIDHeader))
	if httpResponse.StatusCode() != http.StatusOK {
		message := strings.TrimSpace(string(httpResponse.Body()))
		c.logger.DebugWith("API error",
			"path", path,
			"status", httpResponse.StatusCode(),
			"requestID", requestID,
			"error", message)

		// keep the kind so callers can check it like a local error
		if kind := tabular.KindFromString(string(httpResponse.Header.Peek(ErrorKindHeader))); kind != nil {
			return nil, errors.Wrapf(kind, "%s: %s", path, message)
		}

		return nil, errors.Errorf("API returned with bad code - %d\n%s", httpResponse.StatusCode(), message)
	}

	// the response is released on return
	return append([]byte(nil), httpResponse.Body()...), nil
}
