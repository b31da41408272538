/*
Package fangraph computes fan duty cycles from temperature sensors through a
user-defined dataflow graph, and keeps the hardware in sync with it.

# Concept

A graph is made of nodes. Temp and Fan nodes read sensors; CustomTemp, Linear,
Target, Graph and Flat nodes transform values; Control nodes drive a fan. Every
tick, the Controller refreshes the hardware, evaluates the graph leaves-first and
writes the result of every manual, active control back to its device. Controls
that lose their path to a sensor are handed back to the firmware (Auto).

The Controller is hexagonal: the hardware sits behind ports.HardwareBridge and
configs behind ports.ConfigStore, so the same core runs against sysfs, a YAML
file, or the in-memory virtual hardware used in tests.

# Usage

	bridge := memory.NewBridge(memory.NewInventory(1, 0, 1))
	ctrl := fangraph.New(bridge,
		fangraph.WithStore(file.New(".fangraph/configs")),
	)
	if err := ctrl.Start(ctx); err != nil {
		log.Fatal(err)
	}
	defer ctrl.Shutdown(context.Background())

	ticker := time.NewTicker(ctrl.UpdateDelay())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ctrl.Tick(ctx); err != nil {
				log.Println(err)
			}
		}
	}
*/
package fangraph
