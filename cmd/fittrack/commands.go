package main

import (
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/franckalain/fittrack/internal/api"
	"github.com/franckalain/fittrack/internal/models"
	"github.com/franckalain/fittrack/internal/nutrition"
	"github.com/franckalain/fittrack/internal/tracker"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// notice prints the demo-mode line for degraded results.
func notice(w io.Writer, status api.Status, reason string) {
	if status == api.StatusDegraded {
		fmt.Fprintf(w, "(demo data: %s)\n", reason)
	}
}

func (c *cli) loginCmd() *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and remember the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("FITTRACK_PASSWORD")
			}
			res := c.app.Tracker.Login(cmd.Context(), args[0], password)
			if !res.Usable() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			notice(out, res.Status, res.Reason())
			fmt.Fprintf(out, "Logged in as %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (defaults to $FITTRACK_PASSWORD)")
	return cmd
}

func (c *cli) registerCmd() *cobra.Command {
	var password, confirm string
	cmd := &cobra.Command{
		Use:   "register <username> <email>",
		Short: "Create an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Tracker.Register(cmd.Context(), api.RegisterRequest{
				Username:        args[0],
				Email:           args[1],
				Password:        password,
				ConfirmPassword: confirm,
			})
			if !res.Usable() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			notice(out, res.Status, res.Reason())
			fmt.Fprintf(out, "Welcome, %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&password, "password", "p", "", "password")
	cmd.Flags().StringVar(&confirm, "confirm", "", "password again")
	return cmd
}

func (c *cli) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.app.Tracker.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// selectDay loads date, or today when empty, into the ledger.
func (c *cli) selectDay(cmd *cobra.Command, date string) error {
	day := time.Now()
	if date != "" {
		var err error
		if day, err = time.ParseInLocation(nutrition.DateLayout, date, time.Local); err != nil {
			return errors.Errorf("invalid date %q, expected YYYY-MM-DD", date)
		}
	}
	if err := c.app.Tracker.SelectDate(cmd.Context(), day); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning:", err)
	}
	return nil
}

func (c *cli) todayCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "today",
		Short: "Show the day's totals, macros and water",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.selectDay(cmd, date); err != nil {
				return err
			}
			printDashboard(cmd.OutOrStdout(), c.app.Tracker.Dashboard())
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show, YYYY-MM-DD")
	return cmd
}

func printDashboard(w io.Writer, d tracker.Dashboard) {
	if d.Degraded {
		fmt.Fprintf(w, "(demo data: %s)\n", d.Reason)
	}
	fmt.Fprintf(w, "%s\n\n", d.Date)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tEATEN\tGOAL\tLEFT\t%")
	row := func(name, unit string, p nutrition.NutrientProgress) {
		fmt.Fprintf(tw, "%s\t%.0f%s\t%.0f%s\t%.0f%s\t%d\n", name, p.Current, unit, p.Goal, unit, p.Remaining, unit, p.Percent)
	}
	row("Calories", "", d.Progress.Calories)
	row("Protein", "g", d.Progress.Protein)
	row("Carbs", "g", d.Progress.Carbs)
	row("Fat", "g", d.Progress.Fat)
	tw.Flush()

	p, cb, f := d.Macros.Split.Rounded()
	fmt.Fprintf(w, "\nMacros: protein %d%%, carbs %d%%, fat %d%%\n", p, cb, f)
	fmt.Fprintf(w, "Water: %d / %d ml (%d%%). %s\n", d.Water.CurrentML, d.Water.GoalML, d.Water.Percent, d.Water.Message)
	fmt.Fprintf(w, "Tip: %s\n", d.Tip)

	if len(d.Entries) == 0 {
		fmt.Fprintln(w, "\nNo food logged.")
		return
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FOOD\tAMOUNT\tKCAL\tP\tC\tF\tWHEN")
	for _, e := range d.Entries {
		when := models.JustNow
		if !e.Timestamp.IsJustNow() {
			when = e.Timestamp.Format("15:04")
		}
		fmt.Fprintf(tw, "%s\t%g %s\t%.0f\t%.1f\t%.1f\t%.1f\t%s\n",
			e.Description, e.Quantity, e.Unit, e.Calories, e.Protein, e.Carbs, e.Fat, when)
	}
	tw.Flush()
}

func (c *cli) addCmd() *cobra.Command {
	entry := models.FoodEntry{Quantity: 1, Unit: "serving"}
	var date string
	cmd := &cobra.Command{
		Use:   "add <description>",
		Short: "Log a food with its nutrition",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.selectDay(cmd, date); err != nil {
				return err
			}
			entry.Description = strings.Join(args, " ")
			entry.Timestamp = models.Now()
			return c.logEntry(cmd, entry)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&entry.Calories, "calories", 0, "kcal")
	f.Float64Var(&entry.Protein, "protein", 0, "protein grams")
	f.Float64Var(&entry.Carbs, "carbs", 0, "carbohydrate grams")
	f.Float64Var(&entry.Fat, "fat", 0, "fat grams")
	f.Float64Var(&entry.Quantity, "quantity", 1, "amount eaten")
	f.StringVar(&entry.Unit, "unit", "serving", "unit of quantity")
	f.StringVar(&entry.MealType, "meal", "", "breakfast, lunch, dinner or snack")
	f.StringVar(&date, "date", "", "day to log on, YYYY-MM-DD")
	return cmd
}

func (c *cli) logEntry(cmd *cobra.Command, entry models.FoodEntry) error {
	res := c.app.Tracker.LogFood(cmd.Context(), entry)
	if !res.Usable() {
		return res.Err
	}
	out := cmd.OutOrStdout()
	notice(out, res.Status, res.Reason())
	totals := c.app.Tracker.Dashboard().Totals
	fmt.Fprintf(out, "Logged %s (%.0f kcal). Day total: %.0f kcal\n", entry.Description, entry.Calories, totals.Calories)
	return nil
}

func (c *cli) searchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search [query]",
		Short: "Search the food database",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := c.app.Tracker.Search(cmd.Context(), strings.Join(args, " "))
			if !res.Usable() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			notice(out, res.Status, res.Reason())
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FOOD\tKCAL\tP\tC\tF")
			for _, f := range res.Value {
				fmt.Fprintf(tw, "%s\t%.0f\t%.1f\t%.1f\t%.1f\n", f.Label(), f.Calories, f.Protein, f.Carbs, f.Fat)
			}
			return tw.Flush()
		},
	}
}

func (c *cli) analyzeCmd() *cobra.Command {
	var imagePath string
	var logIt bool
	cmd := &cobra.Command{
		Use:   "analyze [description]",
		Short: "Estimate the nutrition of a meal photo or description",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var res api.Result[*models.NutritionData]
			if imagePath != "" {
				data, err := os.ReadFile(imagePath)
				if err != nil {
					return errors.Wrap(err, "read image")
				}
				res = c.app.Tracker.AnalyzeImage(ctx, api.Image{
					Data:     data,
					Filename: filepath.Base(imagePath),
					MIMEType: http.DetectContentType(data),
				})
			} else {
				res = c.app.Tracker.AnalyzeDescription(ctx, strings.Join(args, " "))
			}
			if !res.Usable() {
				return res.Err
			}

			out := cmd.OutOrStdout()
			n := res.Value
			notice(out, res.Status, res.Reason())
			fmt.Fprintf(out, "%s: %.0f kcal, protein %.1fg, carbs %.1fg, fat %.1fg (%g %s)\n",
				n.FoodDescription, n.Calories, n.Protein, n.Carbs, n.Fat, n.Quantity, n.Unit)
			if n.Confidence != nil {
				fmt.Fprintf(out, "Confidence: %d%%\n", int(math.Round(*n.Confidence*100)))
			}
			if n.NutritionTip != "" {
				fmt.Fprintf(out, "Tip: %s\n", n.NutritionTip)
			}
			if !logIt {
				return nil
			}
			if err := c.selectDay(cmd, ""); err != nil {
				return err
			}
			entry := n.Entry()
			entry.Timestamp = models.Now()
			return c.logEntry(cmd, entry)
		},
	}
	cmd.Flags().StringVar(&imagePath, "image", "", "photo of the meal")
	cmd.Flags().BoolVar(&logIt, "log", false, "log the estimate for today")
	return cmd
}

func (c *cli) waterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "water <ml>",
		Short: "Add (or with a negative amount, remove) water for today",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ml, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Errorf("invalid amount %q", args[0])
			}
			if err := c.selectDay(cmd, ""); err != nil {
				return err
			}
			res := c.app.Tracker.AddWater(cmd.Context(), ml)
			if !res.Usable() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			notice(out, res.Status, res.Reason())
			w := c.app.Tracker.Dashboard().Water
			fmt.Fprintf(out, "Water: %d / %d ml, %d ml to go. %s\n", w.CurrentML, w.GoalML, w.RemainingML, w.Message)
			return nil
		},
	}
}

func (c *cli) analyticsCmd() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Show averages, top foods and streaks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := c.app.Tracker.Analytics(cmd.Context(), days)
			if !res.Usable() {
				return res.Err
			}
			out := cmd.OutOrStdout()
			r := res.Value
			notice(out, res.Status, res.Reason())
			fmt.Fprintf(out, "%s to %s: %d days tracked, %d meals, avg %d kcal, avg %d g protein\n",
				r.Data.Period.StartDate, r.Data.Period.EndDate,
				r.Summary.DaysTracked, r.Summary.TotalMeals, r.Summary.AvgCalories, r.Summary.AvgProtein)
			fmt.Fprintf(out, "Streak: %d days (%s), longest %d, %d/7 this week\n",
				r.Streaks.Current, r.Streaks.Badge, r.Streaks.Longest, r.Streaks.CompletedWeek)
			for _, f := range r.Data.TopFoods {
				fmt.Fprintf(out, "  %s x%d, avg %.0f kcal\n", f.Name, f.Frequency, f.AvgCalories)
			}
			for _, m := range r.Summary.MealTypes {
				fmt.Fprintf(out, "  %s: %d meals, avg %d kcal\n", m.MealType, m.Count, m.AvgCalories)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "days to cover")
	return cmd
}

func (c *cli) healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res := c.app.Tracker.Health(cmd.Context())
			if !res.Usable() {
				return res.Err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", res.Value.Status, res.Value.Message)
			return nil
		},
	}
}
