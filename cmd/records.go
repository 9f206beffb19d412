package main

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/hondurasarchive/backend/internal/client"
	"github.com/hondurasarchive/backend/internal/models"
	"github.com/spf13/cobra"
)

var (
	searchFilter models.ListFilter

	recordNames             string
	recordCategory          string
	recordEventDate         string
	recordLocation          string
	recordBirthOrigin       string
	recordCountry           string
	recordNewspaper         string
	recordPage              string
	recordTranscription     string
	recordTranscriptionFile string
	recordFamilySearchID    string
	recordImage             string
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "List archive records",
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := newAPIClient().ListRecords(cmd.Context(), searchFilter)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), result, func() string {
			return formatRecords(result)
		})
	},
}

var showCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show a single record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}
		record, err := newAPIClient().GetRecord(cmd.Context(), id)
		if err != nil {
			return err
		}
		return render(cmd.OutOrStdout(), record, func() string {
			return formatRecord(record)
		})
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Create a record, optionally with an image (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		session, err := loadSession()
		if err != nil {
			return err
		}

		transcription, err := transcriptionValue()
		if err != nil {
			return err
		}

		req := &models.CreateRecordRequest{
			Names:           models.ParseNames(recordNames),
			Category:        recordCategory,
			EventDate:       recordEventDate,
			Location:        recordLocation,
			BirthOrigin:     recordBirthOrigin,
			CountryOfOrigin: recordCountry,
			NewspaperName:   recordNewspaper,
			PageNumber:      recordPage,
			Transcription:   transcription,
			FamilySearchID:  recordFamilySearchID,
		}
		if len(req.Names) == 0 {
			return fmt.Errorf("--names is required")
		}

		var image *client.Image
		if recordImage != "" {
			f, err := os.Open(recordImage)
			if err != nil {
				return fmt.Errorf("failed to open image: %w", err)
			}
			defer f.Close()

			image = &client.Image{
				Filename:    filepath.Base(recordImage),
				ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(recordImage))),
				Reader:      f,
			}
		}

		record, err := newAPIClient().CreateRecord(cmd.Context(), session, req, image)
		if err != nil {
			return clearOnUnauthorized(err)
		}

		return render(cmd.OutOrStdout(), record, func() string {
			return fmt.Sprintf("created record %d\n%s", record.ID, formatRecord(record))
		})
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <record-id>",
	Short: "Change fields of a record (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		req, err := updateRequestFromFlags(cmd)
		if err != nil {
			return err
		}
		if req.IsEmpty() {
			return fmt.Errorf("nothing to update, pass at least one field flag")
		}

		session, err := loadSession()
		if err != nil {
			return err
		}

		record, err := newAPIClient().UpdateRecord(cmd.Context(), session, id, req)
		if err != nil {
			return clearOnUnauthorized(err)
		}

		return render(cmd.OutOrStdout(), record, func() string {
			return formatRecord(record)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <record-id>",
	Short: "Delete a record and its image (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseIDArg(args[0])
		if err != nil {
			return err
		}

		session, err := loadSession()
		if err != nil {
			return err
		}

		if err := newAPIClient().DeleteRecord(cmd.Context(), session, id); err != nil {
			return clearOnUnauthorized(err)
		}

		return render(cmd.OutOrStdout(), map[string]int64{"deleted": id}, func() string {
			return fmt.Sprintf("deleted record %d", id)
		})
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(deleteCmd)

	searchCmd.Flags().StringVarP(&searchFilter.Search, "search", "s", "", "Substring of a name, transcription, location or newspaper")
	searchCmd.Flags().StringVarP(&searchFilter.Letter, "letter", "l", "", "First letter of the primary name")
	searchCmd.Flags().StringVarP(&searchFilter.Category, "category", "c", "", "Portrait, News, Birth, Marriage or Death")

	for _, c := range []*cobra.Command{uploadCmd, updateCmd} {
		c.Flags().StringVar(&recordNames, "names", "", "Names, comma separated or a JSON array; the first is the primary name")
		c.Flags().StringVar(&recordCategory, "category", "", "Portrait, News, Birth, Marriage or Death")
		c.Flags().StringVar(&recordEventDate, "event-date", "", "Date of the event or publication")
		c.Flags().StringVar(&recordLocation, "location", "", "Event location")
		c.Flags().StringVar(&recordBirthOrigin, "birth-origin", "", "Birth origin")
		c.Flags().StringVar(&recordCountry, "country", "", "Country of origin")
		c.Flags().StringVar(&recordNewspaper, "newspaper", "", "Newspaper name")
		c.Flags().StringVar(&recordPage, "page", "", "Page number")
		c.Flags().StringVar(&recordTranscription, "transcription", "", "Transcription text")
		c.Flags().StringVar(&recordTranscriptionFile, "transcription-file", "", "Read the transcription from a file")
		c.Flags().StringVar(&recordFamilySearchID, "familysearch-id", "", "FamilySearch identifier")
	}
	uploadCmd.Flags().StringVar(&recordImage, "image", "", "Image file of the clipping or portrait")
}

func transcriptionValue() (string, error) {
	if recordTranscriptionFile == "" {
		return recordTranscription, nil
	}
	data, err := os.ReadFile(recordTranscriptionFile)
	if err != nil {
		return "", fmt.Errorf("failed to read transcription file: %w", err)
	}
	return string(data), nil
}

// updateRequestFromFlags sets only the fields whose flags were passed
func updateRequestFromFlags(cmd *cobra.Command) (*models.UpdateRecordRequest, error) {
	req := &models.UpdateRecordRequest{}
	flags := cmd.Flags()

	if flags.Changed("names") {
		req.Names = models.ParseNames(recordNames)
		if req.Names == nil {
			req.Names = []string{}
		}
	}

	fields := []struct {
		flag   string
		value  string
		target **string
	}{
		{"category", recordCategory, &req.Category},
		{"event-date", recordEventDate, &req.EventDate},
		{"location", recordLocation, &req.Location},
		{"birth-origin", recordBirthOrigin, &req.BirthOrigin},
		{"country", recordCountry, &req.CountryOfOrigin},
		{"newspaper", recordNewspaper, &req.NewspaperName},
		{"page", recordPage, &req.PageNumber},
		{"familysearch-id", recordFamilySearchID, &req.FamilySearchID},
	}
	for _, f := range fields {
		if flags.Changed(f.flag) {
			v := f.value
			*f.target = &v
		}
	}

	if flags.Changed("transcription") || flags.Changed("transcription-file") {
		transcription, err := transcriptionValue()
		if err != nil {
			return nil, err
		}
		req.Transcription = &transcription
	}

	return req, nil
}

func formatRecords(result *models.ListResult) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAMES\tCATEGORY\tDATE\tNEWSPAPER")
	for _, r := range result.Items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", r.ID, strings.Join(r.Names, "; "), r.Category, r.EventDate, r.NewspaperName)
	}
	tw.Flush()

	fmt.Fprintf(&b, "%d shown, %d in archive", len(result.Items), result.TotalCount)
	if result.LastUpdate != nil {
		fmt.Fprintf(&b, ", last update %s", result.LastUpdate.Format("2006-01-02 15:04"))
	}
	return b.String()
}

func formatRecord(r *models.ArchiveRecord) string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	rows := []struct{ label, value string }{
		{"Names", strings.Join(r.Names, "; ")},
		{"Category", string(r.Category)},
		{"Date", r.EventDate},
		{"Location", r.Location},
		{"Birth origin", r.BirthOrigin},
		{"Country", r.CountryOfOrigin},
		{"Newspaper", r.NewspaperName},
		{"Page", r.PageNumber},
		{"FamilySearch", r.FamilySearchID},
		{"Image", r.ImageURL},
	}
	fmt.Fprintf(tw, "ID\t%d\n", r.ID)
	for _, row := range rows {
		if row.value != "" {
			fmt.Fprintf(tw, "%s\t%s\n", row.label, row.value)
		}
	}
	tw.Flush()

	if r.Transcription != "" {
		b.WriteString("\n" + r.Transcription)
	}
	return strings.TrimRight(b.String(), "\n")
}
