package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaharia-lab/weatherbrief/internal/config"
	"github.com/shaharia-lab/weatherbrief/internal/storage"
	"github.com/shaharia-lab/weatherbrief/internal/weather"
)

// smokeForecastDays is how many forecast days the smoke test prints.
const smokeForecastDays = 3

// NewWeatherCmd returns the "weather" subcommand, a smoke test against the
// weather API that prints current conditions and the next few days.
func NewWeatherCmd(cfg *config.AppConfig) *cobra.Command {
	var region string
	var stored bool

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show live weather for a region",
		Long: `Call the weather API for a region and print current conditions and a
short forecast. Nothing is stored. With --stored, print the latest snapshot
saved by a previous delivery instead.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if stored {
				return withApp(cfg, func(ctx context.Context, a *app) error {
					snap, err := a.weatherSvc.LatestSnapshot(ctx, region)
					if err != nil {
						return err
					}
					printSnapshot(cmd.OutOrStdout(), snap)
					return nil
				})
			}
			return runWeatherSmoke(cmd.Context(), cmd.OutOrStdout(), cfg, region)
		},
	}

	cmd.Flags().StringVar(&region, "region", "", "Region adcode, e.g. 110101")
	cmd.Flags().BoolVar(&stored, "stored", false, "Show the latest stored snapshot instead of calling the API")
	_ = cmd.MarkFlagRequired("region")
	return cmd
}

func runWeatherSmoke(ctx context.Context, w io.Writer, cfg *config.AppConfig, region string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.WeatherAPIKey == "" {
		fmt.Fprintln(os.Stderr, mutedStyle.Render("WEATHER_API_KEY is not set"))
	}

	client := weather.NewClient(cfg.WeatherAPIURL, cfg.WeatherAPIKey, cfg.WeatherAPITimeout)

	live, err := client.FetchCurrent(ctx, region)
	if err != nil {
		return fmt.Errorf("fetching current weather: %w", err)
	}
	casts, err := client.FetchForecast(ctx, region)
	if err != nil {
		return fmt.Errorf("fetching forecast: %w", err)
	}
	if len(casts) > smokeForecastDays {
		casts = casts[:smokeForecastDays]
	}

	printSnapshot(w, &storage.WeatherSnapshot{
		RegionCode:    region,
		RegionName:    live.Province + " " + live.City,
		Weather:       live.Weather,
		Temperature:   live.Temperature,
		WindDirection: live.WindDirection,
		WindPower:     live.WindPower,
		Humidity:      live.Humidity,
		ReportTime:    live.ReportTime,
		Forecast:      casts,
	})
	return nil
}

func printSnapshot(w io.Writer, snap *storage.WeatherSnapshot) {
	title := snap.RegionName
	if title == "" {
		title = snap.RegionCode
	}
	fmt.Fprintln(w, titleStyle.Render(title))
	printField(w, "Weather", snap.Weather)
	printField(w, "Temperature", snap.Temperature+"°C")
	printField(w, "Wind", snap.WindDirection+" "+snap.WindPower)
	printField(w, "Humidity", snap.Humidity+"%")
	printField(w, "Reported", snap.ReportTime)
	if !snap.CreatedAt.IsZero() {
		printField(w, "Stored", snap.CreatedAt.Format(time.DateTime))
	}

	if len(snap.Forecast) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no forecast available"))
		return
	}
	fmt.Fprintln(w, sectionStyle.Render("Forecast"))
	for _, c := range snap.Forecast {
		fmt.Fprintf(w, "  %s  %-6s %s/%s°C  %s\n",
			c.Date, c.DayWeather, c.NightTemp, c.DayTemp, mutedStyle.Render(c.DayWind+" "+c.DayPower))
	}
}
