package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"legalpub/internal/model"
	"legalpub/internal/service"
)

const seedDateLayout = "2006-01-02"

var (
	seedFile   string
	seedAttach []string
	seedDryRun bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load documents from a YAML file",
	Long: `Validate and upsert the documents listed in a YAML file.

Documents are matched by slug, so seeding the same file twice updates in
place. --attach slug=path uploads a PDF for that document to attachment
storage and records its key; it may be repeated.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "YAML file with a documents list (required)")
	seedCmd.Flags().StringArrayVar(&seedAttach, "attach", nil, "slug=path.pdf attachment to upload")
	seedCmd.Flags().BoolVar(&seedDryRun, "dry-run", false, "parse and validate without writing")
	_ = seedCmd.MarkFlagRequired("file")
}

// seedDocument is the YAML shape of one document.
type seedDocument struct {
	ID               string        `yaml:"id"`
	Slug             string        `yaml:"slug"`
	Title            string        `yaml:"title"`
	DocumentType     string        `yaml:"document_type"`
	Status           string        `yaml:"status"`
	PublicationDate  string        `yaml:"publication_date"`
	FilingDate       string        `yaml:"filing_date"`
	CourtHeader      string        `yaml:"court_header"`
	CaseInformation  string        `yaml:"case_information"`
	DocumentSubtitle string        `yaml:"document_subtitle"`
	Content          []model.Block `yaml:"content"`
	SignatureBlock   string        `yaml:"signature_block"`
	Excerpt          string        `yaml:"excerpt"`
	CaseNumber       string        `yaml:"case_number"`
	Tags             []string      `yaml:"tags"`
}

type seedSet struct {
	Documents []seedDocument `yaml:"documents"`
}

func (s seedDocument) toModel() (*model.LegalDocument, error) {
	doc := &model.LegalDocument{
		ID:               s.ID,
		Slug:             strings.TrimSpace(s.Slug),
		Title:            s.Title,
		DocumentType:     model.DocumentType(s.DocumentType),
		Status:           model.Status(s.Status),
		CourtHeader:      s.CourtHeader,
		CaseInformation:  s.CaseInformation,
		DocumentSubtitle: s.DocumentSubtitle,
		Content:          s.Content,
		SignatureBlock:   s.SignatureBlock,
		Excerpt:          s.Excerpt,
		CaseNumber:       s.CaseNumber,
		Tags:             s.Tags,
	}
	if doc.Status == "" {
		doc.Status = model.StatusPublished
	}
	if s.PublicationDate != "" {
		t, err := time.Parse(seedDateLayout, s.PublicationDate)
		if err != nil {
			return nil, fmt.Errorf("publication_date: %w", err)
		}
		doc.PublicationDate = t
	}
	if s.FilingDate != "" {
		t, err := time.Parse(seedDateLayout, s.FilingDate)
		if err != nil {
			return nil, fmt.Errorf("filing_date: %w", err)
		}
		doc.FilingDate = &t
	}
	return doc, nil
}

// parseSeed decodes and validates every document in r. Errors name the
// offending entry by position and slug.
func parseSeed(r io.Reader) ([]*model.LegalDocument, error) {
	var set seedSet
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&set); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("seed file is empty")
		}
		return nil, fmt.Errorf("decode seed file: %w", err)
	}

	docs := make([]*model.LegalDocument, 0, len(set.Documents))
	seen := make(map[string]bool, len(set.Documents))
	for i, sd := range set.Documents {
		doc, err := sd.toModel()
		if err == nil {
			err = doc.Validate()
		}
		if err != nil {
			return nil, fmt.Errorf("document %d (%q): %w", i, sd.Slug, err)
		}
		if seen[doc.Slug] {
			return nil, fmt.Errorf("document %d: duplicate slug %q", i, doc.Slug)
		}
		seen[doc.Slug] = true
		docs = append(docs, doc)
	}
	return docs, nil
}

// parseAttachments turns repeated slug=path flags into a map.
func parseAttachments(flags []string) (map[string]string, error) {
	out := make(map[string]string, len(flags))
	for _, f := range flags {
		slug, path, ok := strings.Cut(f, "=")
		slug, path = strings.TrimSpace(slug), strings.TrimSpace(path)
		if !ok || slug == "" || path == "" {
			return nil, fmt.Errorf("invalid --attach %q: want slug=path", f)
		}
		if _, dup := out[slug]; dup {
			return nil, fmt.Errorf("duplicate --attach for %q", slug)
		}
		out[slug] = path
	}
	return out, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(seedFile)
	if err != nil {
		return err
	}
	defer f.Close()

	docs, err := parseSeed(f)
	if err != nil {
		return err
	}
	attachments, err := parseAttachments(seedAttach)
	if err != nil {
		return err
	}
	for slug := range attachments {
		if !containsSlug(docs, slug) {
			return fmt.Errorf("--attach %q: no such document in %s", slug, seedFile)
		}
	}

	if seedDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d documents valid\n", len(docs))
		return nil
	}

	rt, err := openDeps(len(attachments) > 0, false)
	if err != nil {
		return err
	}
	defer rt.close()

	for _, doc := range docs {
		if err := seedOne(cmd, rt.svc, doc, attachments[doc.Slug]); err != nil {
			return fmt.Errorf("seed %q: %w", doc.Slug, err)
		}
	}
	log.Info("seed_completed", "documents", len(docs), "attachments", len(attachments))
	return nil
}

func seedOne(cmd *cobra.Command, svc service.DocumentService, doc *model.LegalDocument, attachPath string) error {
	var att *service.Attachment
	if attachPath != "" {
		af, err := os.Open(attachPath)
		if err != nil {
			return err
		}
		defer af.Close()
		st, err := af.Stat()
		if err != nil {
			return err
		}
		att = &service.Attachment{Reader: af, Size: st.Size(), Filename: st.Name()}
	}
	if err := svc.Seed(cmd.Context(), doc, att); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", doc.Slug)
	return nil
}

func containsSlug(docs []*model.LegalDocument, slug string) bool {
	for _, d := range docs {
		if d.Slug == slug {
			return true
		}
	}
	return false
}
