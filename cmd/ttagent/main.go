package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ttagent",
		Short: "Toutiao engagement agent: comments, micro-headlines, campaigns",
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")

	root.AddCommand(loginCmd())
	root.AddCommand(logoutCmd())
	root.AddCommand(hotNewsCmd())
	root.AddCommand(searchCmd())
	root.AddCommand(commentCmd())
	root.AddCommand(historyCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(postHeadlineCmd())
	root.AddCommand(headlinesCmd())
	root.AddCommand(activitiesCmd())
	root.AddCommand(participateCmd())
	root.AddCommand(activityHistoryCmd())
	root.AddCommand(startCmd())
	root.AddCommand(configCmd())
	root.AddCommand(openCmd())

	return root
}

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to Toutiao and store session cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogin()
		},
	}
}

func logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear stored session cookies",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogout()
		},
	}
}

func hotNewsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "hot-news",
		Short: "List current hot news candidates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHotNews(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max articles to list")
	return cmd
}

func searchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search news articles by keyword",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSearch(args[0], limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "max articles to list")
	return cmd
}

func commentCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "comment",
		Short: "Run one interactive comment session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runComment(count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 0, "comments to post (default: from config)")
	return cmd
}

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent posted comments",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "entries to show")
	return cmd
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show ledger totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats()
		},
	}
}

func postHeadlineCmd() *cobra.Command {
	var (
		content       string
		topic         string
		activityID    string
		activityTitle string
	)

	cmd := &cobra.Command{
		Use:   "post-headline",
		Short: "Publish a micro-headline",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPostHeadline(content, topic, activityID, activityTitle)
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "micro-headline text (required)")
	cmd.Flags().StringVar(&topic, "topic", "", "hashtag topic, e.g. #话题#")
	cmd.Flags().StringVar(&activityID, "activity-id", "", "campaign this post enters")
	cmd.Flags().StringVar(&activityTitle, "activity-title", "", "campaign title for the record")
	cmd.MarkFlagRequired("content")
	return cmd
}

func headlinesCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "headlines",
		Short: "Show recent micro-headlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHeadlines(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "entries to show")
	return cmd
}

func activitiesCmd() *cobra.Command {
	var (
		limit    int
		all      bool
		category string
	)

	cmd := &cobra.Command{
		Use:   "activities",
		Short: "List open creator-platform campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivities(limit, all, category)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "campaigns to list")
	cmd.Flags().BoolVar(&all, "all", false, "include ended and already-entered campaigns")
	cmd.Flags().StringVar(&category, "category", "全部", "campaign category to filter by")
	return cmd
}

func participateCmd() *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "participate",
		Short: "Walk through entering open campaigns",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParticipate(count)
		},
	}

	cmd.Flags().IntVar(&count, "count", 1, "campaigns to process")
	return cmd
}

func activityHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "activity-history",
		Short: "Show campaign participation attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActivityHistory(limit)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "entries to show")
	return cmd
}

func startCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run unattended on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart()
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigShow()
		},
	}
}

func openCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "open {config|data}",
		Short:     "Open the config file or data directory",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"config", "data"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOpen(args[0])
		},
	}
}
