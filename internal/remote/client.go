// Package remote runs text recognition on another host over gRPC, so a scout
// without a local Tesseract install can borrow one.
package remote

import (
	"bytes"
	"context"
	"errors"
	"image"
	"strconv"
	"time"

	"github.com/disintegration/imaging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/resilience"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// Client implements ocr.Recognizer against a remote Service.
type Client struct {
	conn    *grpc.ClientConn
	breaker *resilience.Breaker
	retry   resilience.RetryConfig
	timeout time.Duration
}

// Dial connects to a serve-ocr endpoint. The connection is lazy; the first
// Recognize reports an unreachable host.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                DefaultKeepaliveTime,
			Timeout:             DefaultKeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithDefaultCallOptions(grpc.MaxCallSendMsgSize(MaxImageBytes)),
		grpc.WithChainUnaryInterceptor(trace.UnaryClientInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigInvalid, "remote ocr address").
			WithMetadata("addr", addr)
	}
	return New(conn), nil
}

// New wraps an existing connection.
func New(conn *grpc.ClientConn) *Client {
	return &Client{
		conn:    conn,
		breaker: resilience.New(resilience.RemoteConfig()),
		retry:   resilience.DefaultRetryConfig(),
		timeout: DefaultCallTimeout,
	}
}

// WithRetry replaces the retry policy.
func (c *Client) WithRetry(cfg resilience.RetryConfig) *Client {
	c.retry = cfg
	return c
}

func (c *Client) Breaker() *resilience.Breaker { return c.breaker }

func (c *Client) Close() error {
	return c.conn.Close()
}

// Recognize sends img as PNG and returns the remote transcription. Transient
// failures are retried; a run of failures opens the breaker and further calls
// fail fast with CodeUnavailable until it resets.
func (c *Client) Recognize(ctx context.Context, img image.Image, mode ocr.Mode) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeRecognitionFailed, "encode image")
	}
	in := wrapperspb.Bytes(buf.Bytes())
	ctx = metadata.AppendToOutgoingContext(ctx, ModeKey, strconv.Itoa(int(mode)))

	text, err := resilience.RetryValue(ctx, c.retry, func() (string, error) {
		return resilience.ExecuteWithResult(c.breaker, func() (string, error) {
			return c.call(ctx, in)
		})
	})
	switch {
	case err == nil:
		return text, nil
	case errors.Is(err, resilience.ErrOpen):
		return "", apperrors.Wrap(err, apperrors.CodeUnavailable, "remote ocr circuit open")
	case ctx.Err() != nil:
		return "", ctx.Err()
	default:
		return "", apperrors.FromGRPCError(err)
	}
}

func (c *Client) call(ctx context.Context, in *wrapperspb.BytesValue) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out := new(wrapperspb.StringValue)
	if err := c.conn.Invoke(ctx, recognizeMethod, in, out); err != nil {
		return "", err
	}
	return out.GetValue(), nil
}
