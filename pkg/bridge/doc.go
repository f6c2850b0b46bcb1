// Package bridge translates logical engine operations into child process
// invocations and classifies what comes back.
//
// # Operations
//
// The set of operations is closed. Each one maps to a fixed argument
// template whose order is part of the engine contract:
//
//	--get products
//	--get users
//	--get reviews <productId>
//	--add-user <name>
//	--add-product <name> <category> <price>
//	--add-review <userId> <productId> <rating> <comment>
//	--delete-user <userId>
//	--delete-product <productId>
//	--purchase <userId> <productId>
//	--rate <userId> <productId> <rating>
//	--recommend <userId>
//
// # Execution
//
// Execute spawns the engine without a shell, captures stdout and stderr in
// bounded buffers, decodes them from the configured text encoding and waits
// for the process under a wall-clock timeout. On expiry the engine's process
// group is killed and the result is KindTimeout. The exit code is never
// inspected: stdout carrying exactly one JSON document is success.
//
// # Normalization
//
// Normalize maps a Result onto an HTTP status and payload:
//
//	KindSuccess            200  engine payload, unchanged
//	KindProcessError       500  {"error": "...", "stderr": "..."}
//	KindEmptyOutput        500  {"error": "<engine> returned no output."}
//	KindMalformedOutput    500  {"error": "Invalid JSON from <engine>", "raw_output": "..."}
//	KindEngineNotFound     500  {"error": "<engine> not found"}
//	KindTimeout            504  {"error": "<engine> execution timed out."}
//	KindUnexpectedFailure  500  {"error": "Unexpected error: ..."}
//
// Usage:
//
//	l, _ := locator.New(locator.WithDir("/opt/engine"))
//	b, err := bridge.New(locator.NewResolver(l), bridge.WithTimeout(5*time.Second))
//	if err != nil {
//	    return err
//	}
//	resp := b.Do(ctx, bridge.NewInvocation(bridge.OpRecommend, "42"))
package bridge
