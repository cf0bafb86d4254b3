/*
Package tracing provides lightweight request tracing.

# Overview

Spans are created per HTTP request and per outbound agent call, correlated
through context and the X-Trace-ID / X-Span-ID headers, and exported through
the structured logger. There is no external collector; the logger is the
sink.

# Usage

	tracer := tracing.New("shell", logger)
	router.Use(tracing.HTTPMiddleware(tracer))

	span, ctx := tracer.StartSpan(ctx, "session.restore")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()
*/
package tracing
