package main

import (
	"synergia-backend/cmd/synergia-cli/commands"
	"synergia-backend/lib/serviceutil"
	"synergia-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	tel, err := telemetry.SetupFromEnv(ctx, "synergia-cli")
	if err != nil {
		serviceutil.Fatal("failed to setup telemetry", err)
	}
	defer tel.Shutdown(ctx)

	commands.ExecuteContext(ctx)
}
