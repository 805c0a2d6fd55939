package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tanpawarit/trip-dining/agent/agents/selector"
	contractx "github.com/tanpawarit/trip-dining/agent/contract"
	"github.com/tanpawarit/trip-dining/agent/itinerary"
	"github.com/tanpawarit/trip-dining/agent/mcpserver"
	"github.com/tanpawarit/trip-dining/agent/restaurant"
	"github.com/tanpawarit/trip-dining/agent/tool"
	configx "github.com/tanpawarit/trip-dining/pkg/config"
	googlemapsx "github.com/tanpawarit/trip-dining/pkg/googlemaps"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve top_restaurant, distance and math.evaluate over MCP stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		infos, exec := tool.Build(a.selector, a.places)
		srv, err := mcpserver.New(mcpserver.DefaultName, mcpserver.DefaultVersion, infos, exec)
		if err != nil {
			return err
		}
		return srv.ServeStdio()
	},
}

var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Recommend one restaurant near a location",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		location, _ := flags.GetString("location")
		date, _ := flags.GetString("date")
		runID, _ := flags.GetString("run")
		format, _ := flags.GetString("format")

		req := contractx.SelectRequest{RunID: runID, Location: location, Date: date}
		if flags.Changed("lat") && flags.Changed("lng") {
			lat, _ := flags.GetFloat64("lat")
			lng, _ := flags.GetFloat64("lng")
			req.Latitude, req.Longitude = &lat, &lng
		}

		a, err := newApp(cmd.Context(), func(c *selector.Config) {
			if format != "" {
				c.OutputFormat = format
			}
		})
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.selector.Select(cmd.Context(), req)
		if err == nil {
			err = res.Err()
		}
		if err != nil {
			fmt.Fprintln(cmd.OutOrStdout(), restaurant.Message(err))
			if errors.Is(err, contractx.ErrNoCandidates) || errors.Is(err, contractx.ErrAllRecommended) {
				return nil
			}
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), res.Text)
		return nil
	},
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Attach a restaurant to every stop of an itinerary file",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, _ := cmd.Flags().GetString("in")
		out, _ := cmd.Flags().GetString("out")
		runID, _ := cmd.Flags().GetString("run")

		plan, err := itinerary.Load(in)
		if err != nil {
			return fmt.Errorf("load itinerary %s: %w", in, err)
		}
		if runID != "" {
			plan.RunID = runID
		}

		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		entries, err := itinerary.Run(cmd.Context(), a.selector, plan)
		if err != nil {
			return err
		}

		if out == "" {
			raw, err := itinerary.RenderJSON(entries)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(raw))
			return nil
		}
		return itinerary.Write(out, entries)
	},
}

var distanceCmd = &cobra.Command{
	Use:   "distance",
	Short: "Straight-line distance between two places",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		toolArgs := map[string]any{}
		for _, name := range []string{"origin", "destination"} {
			if v, _ := flags.GetString(name); v != "" {
				toolArgs[name] = v
			}
		}
		for _, name := range []string{"origin-lat", "origin-lng", "destination-lat", "destination-lng"} {
			if flags.Changed(name) {
				v, _ := flags.GetFloat64(name)
				toolArgs[strings.ReplaceAll(name, "-", "_")] = v
			}
		}

		var geocoder contractx.Geocoder
		_, byOriginName := toolArgs["origin"]
		_, byDestinationName := toolArgs["destination"]
		if byOriginName || byDestinationName {
			mapsCfg, err := configx.New[googlemapsx.Config]("GOOGLE_MAPS")
			if err != nil {
				return fmt.Errorf("load google maps config: %w", err)
			}
			client, err := googlemapsx.NewClient(*mapsCfg)
			if err != nil {
				return err
			}
			geocoder = client
		}

		res, err := tool.NewExecutor(nil, geocoder)(cmd.Context(), tool.ToolDistance, toolArgs)
		if err != nil {
			return err
		}
		if res.Error != "" {
			return errors.New(res.Error)
		}
		raw, err := json.MarshalIndent(res.Result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(raw))
		return nil
	},
}

var forgetCmd = &cobra.Command{
	Use:   "forget",
	Short: "Discard the recommendation memory of a run",
	RunE: func(cmd *cobra.Command, args []string) error {
		runID, _ := cmd.Flags().GetString("run")

		a := &app{}
		defer a.Close()
		if err := a.openRegistry(cmd.Context()); err != nil {
			return err
		}
		if a.backend == backendMemory {
			// The in-process store starts empty, so there is nothing to delete.
			log.Warn().Str("run_id", runID).Msg("session backend is memory, runs are not persisted between commands")
			fmt.Fprintf(cmd.OutOrStdout(), "run %s has no persisted memory (SESSION_BACKEND=memory)\n", runID)
			return nil
		}
		if err := a.registry.Forget(cmd.Context(), runID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "run %s forgotten\n", runID)
		return nil
	},
}

func init() {
	selectCmd.Flags().String("location", "", "place name or address")
	selectCmd.Flags().Float64("lat", 0, "latitude, used with --lng instead of --location")
	selectCmd.Flags().Float64("lng", 0, "longitude")
	selectCmd.Flags().String("date", "", "visit date YYYY-MM-DD")
	selectCmd.Flags().String("run", "", "run id scoping duplicate suppression")
	selectCmd.Flags().String("format", "", "output format: json or markdown")

	batchCmd.Flags().String("in", "", "itinerary file (YAML or JSON)")
	batchCmd.Flags().String("out", "", "output file, .md for Markdown, JSON otherwise (default stdout)")
	batchCmd.Flags().String("run", "", "run id, overrides the file's run_id")
	_ = batchCmd.MarkFlagRequired("in")

	distanceCmd.Flags().String("origin", "", "origin place name")
	distanceCmd.Flags().String("destination", "", "destination place name")
	distanceCmd.Flags().Float64("origin-lat", 0, "origin latitude")
	distanceCmd.Flags().Float64("origin-lng", 0, "origin longitude")
	distanceCmd.Flags().Float64("destination-lat", 0, "destination latitude")
	distanceCmd.Flags().Float64("destination-lng", 0, "destination longitude")

	forgetCmd.Flags().String("run", "", "run id to discard")
	_ = forgetCmd.MarkFlagRequired("run")
}
