// Package shutdown coordinates orderly process teardown.
//
// A Handler waits for SIGINT, SIGTERM or an explicit Trigger, then runs the
// registered hooks in reverse registration order under a shared deadline.
//
//	h := shutdown.NewHandler(30*time.Second, log)
//	h.OnShutdown("close listener", srv.Close)
//	err := h.Wait()
package shutdown
