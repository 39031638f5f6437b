// Package server runs an http.Handler with graceful shutdown.
//
// Run fits errgroup-based lifecycles:
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
//	defer stop()
//
//	srv, err := server.NewFromConfig(cfg, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(srv.Run(ctx, h))
//	return eg.Wait()
//
// The listener is bound before Ready is closed, so ":0" works in tests and
// Addr reports the real port.
package server
