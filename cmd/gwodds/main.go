package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/richard-senior/gwodds/internal/api"
	"github.com/richard-senior/gwodds/internal/logger"
	"github.com/richard-senior/gwodds/pkg/gwodds"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	dbPath := flag.String("db", "", "path to the sqlite database (overrides config)")
	leagues := flag.String("leagues", "", "comma separated league ids to process")
	serveAddr := flag.String("serve", "", "serve the batch output as JSON on this address, e.g. :8585")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	if *verbose {
		logger.SetLevel(logger.DEBUG)
	}

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	if *configPath == "" {
		*configPath = os.Getenv("GWODDS_CONFIG")
	}
	if *configPath != "" {
		if _, err := gwodds.LoadConfigFile(*configPath); err != nil {
			logger.Fatal("Configuration rejected", err)
		}
	}
	if *dbPath == "" {
		*dbPath = os.Getenv("GWODDS_DB")
	}
	if *dbPath != "" {
		gwodds.Config.DatabasePath = *dbPath
	}
	if err := gwodds.ValidateConfig(gwodds.Config); err != nil {
		logger.Fatal("Configuration rejected", err)
	}

	if *leagues == "" {
		logger.Fatal("No leagues given: pass -leagues with comma separated league ids")
	}

	store, err := gwodds.OpenStore(gwodds.Config.DatabasePath)
	if err != nil {
		logger.Fatal("Could not open store", err)
	}
	defer store.Close()

	var allGameweeks []*gwodds.Gameweek
	var allSkipped []*gwodds.SkippedFixture

	for _, leagueID := range strings.Split(*leagues, ",") {
		leagueID = strings.TrimSpace(leagueID)
		if leagueID == "" {
			continue
		}
		gameweeks, skipped, err := processLeague(store, leagueID)
		if err != nil {
			// one broken league must not sink the whole run
			logger.Error("League failed, continuing", leagueID, err)
			continue
		}
		allGameweeks = append(allGameweeks, gameweeks...)
		allSkipped = append(allSkipped, skipped...)
	}

	printGameweeks(allGameweeks, allSkipped)

	if *serveAddr != "" {
		server := api.NewServer(allGameweeks, allSkipped)
		if err := server.ListenAndServe(*serveAddr); err != nil {
			logger.Fatal("Server stopped", err)
		}
	}
}

// processLeague runs the full batch for one league: load stats for the
// current and previous season, assemble, and return the grouped output
func processLeague(store *gwodds.Store, leagueID string) ([]*gwodds.Gameweek, []*gwodds.SkippedFixture, error) {
	previousSeason, err := gwodds.PreviousSeason(gwodds.Config.CurrentSeason)
	if err != nil {
		return nil, nil, err
	}

	stats, err := store.LoadSeasonStats(leagueID, gwodds.Config.CurrentSeason, previousSeason)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Loaded season stats", leagueID, len(stats))

	fixtures, err := store.LoadUpcomingFixtures(leagueID)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("Loaded upcoming fixtures", leagueID, len(fixtures))

	assembler, err := gwodds.NewGameweekAssembler(gwodds.Config, stats)
	if err != nil {
		return nil, nil, err
	}

	gameweeks, skipped := assembler.Assemble(fixtures)
	return gameweeks, skipped, nil
}

func printGameweeks(gameweeks []*gwodds.Gameweek, skipped []*gwodds.SkippedFixture) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)

	for _, gw := range gameweeks {
		fmt.Fprintf(w, "\n%s %s\n", gw.LeagueID, gw.Label)
		fmt.Fprintln(w, "fixture\thome\tdraw\taway\thome CS\taway CS\t3+ goals\tlikely score")
		for _, m := range gw.RankedByFavorability() {
			top := ""
			if len(m.TopScorelines) > 0 {
				top = fmt.Sprintf("%s (%.1f%%)", m.TopScorelines[0].String(), m.TopScorelines[0].Probability*100)
			}
			fmt.Fprintf(w, "%s v %s\t%.1f%%\t%.1f%%\t%.1f%%\t%.1f%%\t%.1f%%\t%.1f%%\t%s\n",
				m.Fixture.HomeID, m.Fixture.AwayID,
				m.HomeWin*100, m.Draw*100, m.AwayWin*100,
				m.HomeCleanSheet*100, m.AwayCleanSheet*100,
				m.ThreePlusGoals*100, top)
		}
	}
	w.Flush()

	for _, sk := range skipped {
		logger.Warn("Fixture skipped", sk.Fixture.String(), sk.Reason)
	}
}
