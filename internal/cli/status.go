package cli

import (
	"context"
	"fmt"

	"github.com/simula/nperfd/internal/control"
)

// Represents the 'nperfd status' command.
type StatusCmd struct{}

// Executes the status command.
//
// Connects to the control socket of a running launcher and prints its
// state.
func (c *StatusCmd) Run(ctx context.Context) error {
	status, err := control.Status(RootCmd.Socket)
	if err != nil {
		return err
	}

	fmt.Printf("version:  %s\n", status.Version)
	fmt.Printf("pid:      %d\n", status.Pid)
	fmt.Printf("node:     %d\n", status.NodeID)
	fmt.Printf("uptime:   %s\n", status.Uptime)

	if len(status.Instances) == 0 {
		fmt.Println("instances: none (waiting for a matching modem)")
		return nil
	}

	fmt.Println("instances:")
	for _, inst := range status.Instances {
		fmt.Printf("  %d on %s: %s, %d cycles, %d failures\n",
			inst.MeasurementID, inst.Interface, inst.State, inst.Cycles, inst.Failures)
	}

	return nil
}

// Represents the 'nperfd stop' command.
type StopCmd struct{}

// Executes the stop command.
func (c *StopCmd) Run(ctx context.Context) error {
	if err := control.Stop(RootCmd.Socket); err != nil {
		return err
	}
	fmt.Println("stop requested")
	return nil
}
