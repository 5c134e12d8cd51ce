package main

import (
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Not-Dhanraj/Star-Scout/internal/ocr"
	"github.com/Not-Dhanraj/Star-Scout/internal/remote"
)

var serveOCRCmd = &cobra.Command{
	Use:   "serve-ocr",
	Short: "Serve the local Tesseract engine over gRPC",
	Long: `Exposes Tesseract as the Recognizer service so a scout on another
machine can run with ocr_backend: remote.`,
	RunE: runServeOCR,
}

func runServeOCR(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, err := ocr.NewTesseract(cfg.OCRLanguage)
	if err != nil {
		return err
	}
	defer func() { _ = engine.Close() }()

	lis, err := net.Listen("tcp", cfg.ServeOCRAddr)
	if err != nil {
		return err
	}
	srv := remote.NewServer(remote.NewService(engine))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("ocr service listening", "addr", lis.Addr().String(), "tesseract", engine.Version())
		return srv.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("ocr service stopping")
		srv.GracefulStop()
		return nil
	})
	return g.Wait()
}
