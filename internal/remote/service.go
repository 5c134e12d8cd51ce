package remote

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	"github.com/disintegration/imaging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/Not-Dhanraj/Star-Scout/internal/errors"
	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/trace"
)

// recognizerServer is the handler contract behind the service descriptor.
type recognizerServer interface {
	Recognize(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*recognizerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Recognize", Handler: recognizeHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "scout/ocr/v1/recognizer.proto",
}

func recognizeHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(recognizerServer).Recognize(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: recognizeMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(recognizerServer).Recognize(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// Service exposes a local recognizer to remote scouts.
type Service struct {
	engine ocr.Recognizer
}

func NewService(engine ocr.Recognizer) *Service {
	return &Service{engine: engine}
}

// Register attaches svc to s.
func Register(s *grpc.Server, svc *Service) {
	s.RegisterService(&serviceDesc, svc)
}

// NewServer returns a gRPC server with trace and logging interceptors and
// svc registered.
func NewServer(svc *Service, opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(MaxImageBytes),
		grpc.ChainUnaryInterceptor(trace.UnaryServerInterceptor(), logCalls),
	}, opts...)
	s := grpc.NewServer(opts...)
	Register(s, svc)
	return s
}

// Recognize decodes the image and runs it through the local engine.
func (s *Service) Recognize(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	mode := ocr.ModeBlock
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if v := md.Get(ModeKey); len(v) > 0 {
			n, err := strconv.Atoi(v[0])
			if err != nil {
				return nil, apperrors.New(apperrors.CodeConfigInvalid, "bad segmentation mode").
					WithMetadata("mode", v[0])
			}
			mode = ocr.Mode(n)
		}
	}

	img, err := imaging.Decode(bytes.NewReader(in.GetValue()))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeRecognitionFailed, "decode image").
			WithMetadata("bytes", strconv.Itoa(len(in.GetValue())))
	}

	text, err := s.engine.Recognize(ctx, img, mode)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, apperrors.Wrap(err, apperrors.CodeRecognitionFailed, "recognize")
	}
	return wrapperspb.String(text), nil
}

func logCalls(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	ctx, span := trace.StartSpan(ctx, info.FullMethod)
	defer span.End()

	resp, err := handler(ctx, req)
	if err != nil {
		trace.Logger(ctx).Warn("remote recognize failed", "method", info.FullMethod, "error", err)
	}
	return resp, err
}
