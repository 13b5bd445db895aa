package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"whatsup/pkg/config"
	"whatsup/pkg/discover"
	"whatsup/pkg/llm"
	"whatsup/pkg/pipeline"
	"whatsup/pkg/reddit"
	"whatsup/pkg/store"
)

var configPath string

func main() {
	godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "whatsup",
		Short: "Build a themed digest from community discussions",
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.json", "config file path")

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(themesCmd())
	rootCmd.AddCommand(summarizeCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

func newForum() (*reddit.Client, error) {
	return reddit.NewClient(reddit.CredentialsFromEnv())
}

func newCompleter(cmd *cobra.Command, cfg *config.Config) (*llm.Gemini, error) {
	return llm.NewGemini(cmd.Context(), llm.GeminiConfig{Model: cfg.Classifier.Model})
}

func newDriver(cmd *cobra.Command) (*pipeline.Driver, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	forum, err := newForum()
	if err != nil {
		return nil, nil, err
	}
	completer, err := newCompleter(cmd, cfg)
	if err != nil {
		return nil, nil, err
	}

	var opts []pipeline.Option
	if cfg.Paths.HistoryDB != "" {
		history, err := store.New(cfg.Paths.HistoryDB)
		if err != nil {
			fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
		} else {
			opts = append(opts, pipeline.WithHistory(history))
		}
	}

	return pipeline.New(cfg, forum, completer, opts...), cfg, nil
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: scrape, extract themes, summarize, export",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := newDriver(cmd)
			if err != nil {
				return err
			}
			if err := d.Run(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Digest written to %s\n", cfg.Paths.Digest)
			return nil
		},
	}
}

func scrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Scrape and classify posts, writing the corpus artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := newDriver(cmd)
			if err != nil {
				return err
			}
			if err := d.Scrape(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Corpus written to %s\n", cfg.Paths.CorpusJSON)
			return nil
		},
	}
}

func themesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "Cluster the corpus into themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := newDriver(cmd)
			if err != nil {
				return err
			}
			if err := d.ExtractThemes(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Themes written to %s\n", cfg.Paths.Themes)
			return nil
		},
	}
}

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize",
		Short: "Summarize every theme's posts and comment threads",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := newDriver(cmd)
			if err != nil {
				return err
			}
			if err := d.Summarize(cmd.Context()); err != nil {
				return err
			}
			fmt.Printf("Summaries written to %s\n", cfg.Paths.Summaries)
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Render the markdown digest from the theme summaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, cfg, err := newDriver(cmd)
			if err != nil {
				return err
			}
			if err := d.Export(); err != nil {
				return err
			}
			fmt.Printf("Digest written to %s\n", cfg.Paths.Digest)
			return nil
		},
	}
}

func searchCmd() *cobra.Command {
	var perKeyword int

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Discover communities matching the configured reader profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			forum, err := newForum()
			if err != nil {
				return err
			}
			completer, err := newCompleter(cmd, cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			d := discover.NewDiscoverer(completer, forum)

			up := cfg.UserProfile
			profile, err := d.Profile(ctx, up.Who, up.Interest, up.Intent)
			if err != nil {
				return err
			}
			fmt.Printf("Reader profile (%s):\n%s\n\n", profile.ExpertiseLevel, profile.Profile)

			keywords, err := d.Keywords(ctx, profile.Profile)
			if err != nil {
				return err
			}
			fmt.Printf("Keywords: %v\n\n", keywords)

			results, err := d.SearchCommunities(ctx, keywords, perKeyword)
			if err != nil {
				return err
			}

			var history *store.Store
			if cfg.Paths.HistoryDB != "" {
				if history, err = store.New(cfg.Paths.HistoryDB); err != nil {
					fmt.Fprintf(os.Stderr, "history disabled: %v\n", err)
					history = nil
				} else {
					defer history.Close()
				}
			}

			for _, keyword := range keywords {
				found := results[keyword]
				if len(found) == 0 {
					continue
				}
				fmt.Printf("Keyword: %s\n", keyword)
				for _, sub := range found {
					fmt.Printf("- r/%s: %d subscribers\n", sub.Name, sub.Subscribers)
				}
				fmt.Println()
				if history != nil {
					if _, err := history.RecordSearch(keyword, found); err != nil {
						fmt.Fprintf(os.Stderr, "record search %q: %v\n", keyword, err)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&perKeyword, "limit", "n", 5, "communities per keyword")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent recorded searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			history, err := store.New(cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer history.Close()

			searches, err := history.RecentSearches(limit)
			if err != nil {
				return err
			}
			if len(searches) == 0 {
				fmt.Println("No recorded searches yet.")
				return nil
			}
			for _, s := range searches {
				fmt.Printf("%s  %-20s %d posts  (%s)\n",
					s.CreatedAt.Format("2006-01-02 15:04"), s.Keyword, len(s.Posts), s.ID[:8])
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of searches to show")
	return cmd
}
