package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cityweather/apis"
	"cityweather/config"
	"cityweather/dates"
	"cityweather/extract"
	"cityweather/metrics"
	"cityweather/server"
)

type app struct {
	settings      *config.Settings
	defaultCities []byte
	logger        zerolog.Logger
}

// New returns the root command. defaultCities is the YAML city list used when neither
// --cities nor CITIES_FILE names a file.
func New(settings *config.Settings, defaultCities []byte, logger zerolog.Logger) *cobra.Command {
	a := &app{
		settings:      settings,
		defaultCities: defaultCities,
		logger:        logger,
	}

	cmd := &cobra.Command{
		Use:           "cityweather",
		Short:         "Fetch weather and air pollution for a configured list of cities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.settings.Validate()
		},
	}

	cmd.PersistentFlags().StringVar(&settings.Provider, "provider", settings.Provider, "data provider (openweather, weatherapi)")
	cmd.PersistentFlags().StringVar(&settings.CitiesFile, "cities", settings.CitiesFile, "YAML file with the city list")

	cmd.AddCommand(a.extractCommand(), a.historyCommand(), a.serveCommand())

	return cmd
}

func (a *app) cities() config.Source {
	if a.settings.CitiesFile != "" {
		return config.File(a.settings.CitiesFile)
	}

	return config.Bytes(a.defaultCities)
}

func (a *app) newStrategy(history *dates.Range, recorder extract.Recorder) (extract.Strategy, error) {
	return apis.New(a.settings, apis.Options{
		Cities:   a.cities(),
		History:  history,
		Recorder: recorder,
		Logger:   a.logger,
	})
}

func (a *app) extractCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Retrieve data for every configured city and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var history *dates.Range
			if from != "" || to != "" {
				period, err := dates.ParseRange(from, to)
				if err != nil {
					return err
				}
				history = &period
			}

			strategy, err := a.newStrategy(history, nil)
			if err != nil {
				return err
			}

			extractor := extract.New(strategy)
			defer extractor.Close()

			result, err := extractor.RetrieveData(cmd.Context())
			if err != nil {
				return err
			}

			return printJSON(cmd, result)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "pollution history start date (dd/mm/yyyy)")
	cmd.Flags().StringVar(&to, "to", "", "pollution history end date (dd/mm/yyyy)")

	return cmd
}

func (a *app) historyCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "history CITY",
		Short: "Print the pollution history of one city between two dates",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := dates.ParseRange(from, to); err != nil {
				return err
			}

			strategy, err := a.newStrategy(nil, nil)
			if err != nil {
				return err
			}

			extractor := extract.New(strategy)
			defer extractor.Close()

			historyStrategy, ok := extractor.Strategy().(extract.HistoryStrategy)
			if !ok {
				return fmt.Errorf("%s: %w", a.settings.Provider, apis.ErrHistoryNotSupported)
			}

			data, err := historyStrategy.PollutionHistory(cmd.Context(), a.city(args[0]), from, to)
			if err != nil {
				return err
			}

			return printJSON(cmd, data)
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "start date (dd/mm/yyyy)")
	cmd.Flags().StringVar(&to, "to", "", "end date (dd/mm/yyyy)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// city returns the configured city with that name so its coordinates are reused.
func (a *app) city(name string) extract.City {
	cities, err := a.cities()()
	if err == nil {
		for _, city := range cities {
			if city.Name == name {
				return city
			}
		}
	}

	return extract.City{Name: name}
}

func (a *app) serveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve extractions over HTTP, one per request",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector())
			recorder := metrics.NewPromCollector(registry)

			gin.SetMode(gin.ReleaseMode)
			handler := server.NewHandler(func(history *dates.Range) (extract.Strategy, error) {
				return a.newStrategy(history, recorder)
			}, a.logger)

			srv := &http.Server{
				Addr:    ":" + a.settings.Port,
				Handler: server.NewRouter(handler, registry),
			}

			go func() {
				<-cmd.Context().Done()
				_ = srv.Close()
			}()

			a.logger.Info().Str("addr", srv.Addr).Str("provider", a.settings.Provider).Msg("listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&a.settings.Port, "port", a.settings.Port, "listen port")

	return cmd
}

func printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
