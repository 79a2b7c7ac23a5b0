// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package tracing wires OpenTelemetry spans for glidectl.

Each node run gets a root span and each input item a child span, so a slow
or failing item can be found in the collector by run id and item index.

	provider, err := tracing.Setup(ctx, tracing.Config{Exporter: "otlp-http", Endpoint: "localhost:4318"})
	if err != nil {
	    return err
	}
	defer provider.Shutdown(ctx)

	ctx, run := tracing.StartRun(ctx, provider.Tracer(), runID, "row", "get", len(items))
	defer run.End()

Exporters: none (default), console (pretty JSON on stderr), otlp-http and
otlp-grpc.
*/
package tracing
