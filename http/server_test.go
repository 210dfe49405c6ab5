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
	"context"
	"net"
	"net/http"
	"testing"

	"github.com/nuclio/logger"
	nucliozap "github.com/nuclio/zap"
	"github.com/stretchr/testify/suite"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
	"github.com/vmihailenco/msgpack"

	"github.com/v3io/tabular"
	"github.com/v3io/tabular/test"
	"github.com/v3io/tabular/transform"
)

type serverSuite struct {
	suite.Suite
	logger   logger.Logger
	engine   *transform.Engine
	server   *Server
	listener *fasthttputil.InmemoryListener
	client   *Client
}

func (suite *serverSuite) SetupTest() {
	var err error

	suite.logger, err = nucliozap.NewNuclioZapTest("test")
	suite.Require().NoError(err)

	cfg := tabular.NewConfig()
	cfg.Workers = 2
	suite.engine, err = transform.NewEngine(context.Background(), suite.logger, cfg)
	suite.Require().NoError(err)

	suite.server, err = NewServer(cfg, suite.engine, suite.logger)
	suite.Require().NoError(err)
	suite.Require().Equal(ReadyState, suite.server.State())

	suite.listener = fasthttputil.NewInmemoryListener()
	suite.Require().NoError(suite.server.Serve(suite.listener))
	suite.Require().Equal(RunningState, suite.server.State())

	suite.client, err = NewClient("http://tabular", 0, suite.logger)
	suite.Require().NoError(err)
	suite.client.WithHTTPClient(&fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return suite.listener.Dial()
		},
	})
}

func (suite *serverSuite) TearDownTest() {
	suite.Require().NoError(suite.server.Stop())
	suite.engine.Close()
}

func (suite *serverSuite) TestStatus() {
	state, err := suite.client.Status()
	suite.Require().NoError(err)
	suite.Require().Equal(RunningState, state)
}

func (suite *serverSuite) TestTranspose() {
	t := suite.T()
	frame := test.Frame(t,
		test.Column(t, "id", []int64{1, 2, 3}),
		test.Column(t, "name", []string{"foo", "bar", "baz"}),
		test.Column(t, "data", []int64{42, 43, 44}),
	)

	out, err := suite.client.TransposeToJSON(frame, []string{"name", "data"}, "")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"id", tabular.DefaultJSONColumn}, out.Names())

	col, err := out.Column(tabular.DefaultJSONColumn)
	suite.Require().NoError(err)
	suite.Require().Equal(`{"name":"foo","data":42}`, col.Strings()[0])

	_, err = suite.client.TransposeToJSON(frame, []string{"nope"}, "")
	suite.Require().True(tabular.IsKind(err, tabular.ErrColumnNotFound))
}

func (suite *serverSuite) TestPartition() {
	frame := test.MixedFrame(suite.T(), 10)

	chunks, err := suite.client.Partition(frame, 4)
	suite.Require().NoError(err)
	suite.Require().Len(chunks, 3)
	suite.Require().Equal(2, chunks[2].Len())

	_, err = suite.client.Partition(frame, 0)
	suite.Require().True(tabular.IsKind(err, tabular.ErrInvalidChunkSize))
}

func (suite *serverSuite) TestJoinUnion() {
	t := suite.T()
	frames := []tabular.Frame{
		test.Frame(t, test.IntCol(t, "id", 3, 0), test.StringCol(t, "a", 3)),
		test.Frame(t, test.IntCol(t, "id", 3, 0), test.FloatCol(t, "b", 3)),
	}

	out, err := suite.client.Join(frames, []string{"id"}, "left")
	suite.Require().NoError(err)
	suite.Require().Equal([]string{"id", "a", "b"}, out.Names())
	suite.Require().Equal(3, out.Len())

	_, err = suite.client.Union(frames)
	suite.Require().True(tabular.IsKind(err, tabular.ErrIncompatibleSchema))

	out, err = suite.client.Union([]tabular.Frame{frames[0], frames[0]})
	suite.Require().NoError(err)
	suite.Require().Equal(6, out.Len())

	_, err = suite.client.Union(nil)
	suite.Require().True(tabular.IsKind(err, tabular.ErrEmptyInputList))
}

func (suite *serverSuite) TestHandlerErrors() {
	testCases := []struct {
		method string
		uri    string
		status int
	}{
		{"GET", "/nope", http.StatusNotFound},
		{"GET", "/union", http.StatusMethodNotAllowed},
		{"POST", "/partition?size=x", http.StatusBadRequest},
		{"POST", "/join?keys=id", http.StatusBadRequest},
	}

	for _, tc := range testCases {
		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.SetMethod(tc.method)
		ctx.Request.SetRequestURI(tc.uri)

		suite.server.handler(ctx)
		suite.Require().Equal(tc.status, ctx.Response.StatusCode(), tc.uri)
		suite.Require().NotEmpty(ctx.Response.Header.Peek(RequestIDHeader), tc.uri)
	}
}

func (suite *serverSuite) TestBadNullColumn() {
	for _, size := range []int{-1, 1 << 40} {
		msg := &tabular.FrameMessage{
			Columns: []*tabular.ColumnMessage{
				{Name: "n", DType: "null", Size: size},
			},
		}
		body, err := msgpack.Marshal(msg)
		suite.Require().NoError(err)

		ctx := &fasthttp.RequestCtx{}
		ctx.Request.Header.SetMethod("POST")
		ctx.Request.SetRequestURI("/transpose?columns=n")
		ctx.Request.SetBody(body)

		suite.server.handler(ctx)
		suite.Require().Equal(http.StatusBadRequest, ctx.Response.StatusCode(), size)
		suite.Require().Equal(tabular.ErrRowCountMismatch.Error(), string(ctx.Response.Header.Peek(ErrorKindHeader)), size)
	}
}

func (suite *serverSuite) TestStatusCode() {
	suite.Require().Equal(http.StatusNotFound, statusCode(tabular.ErrKeyColumnMissing))
	suite.Require().Equal(http.StatusUnprocessableEntity, statusCode(tabular.ErrSerialization))
	suite.Require().Equal(http.StatusBadRequest, statusCode(tabular.ErrRowCountMismatch))
	suite.Require().Equal(http.StatusInternalServerError, statusCode(context.Canceled))
}

func TestServer(t *testing.T) {
	suite.Run(t, new(serverSuite))
}
