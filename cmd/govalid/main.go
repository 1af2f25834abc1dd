package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	gojson "github.com/goccy/go-json"
	"github.com/sirupsen/logrus"

	"github.com/reoring/govalid"
	"github.com/reoring/govalid/config"
	"github.com/reoring/govalid/descriptor"
)

const (
	exitValid   = 0
	exitInvalid = 1
	exitUsage   = 2
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "govalid validates a JSON or YAML document against a rule file\n\nUsage:\n  govalid -rules rules.yaml [-first] [-first-fields] [-deep] [-lang tag] document.json|document.yaml|-\n\nExit status is 0 when the document is valid, 1 when it is not, and 2 on usage or input errors.")
}

type report struct {
	Valid  bool                `json:"valid"`
	Errors govalid.Errors      `json:"errors,omitempty"`
	Fields govalid.FieldErrors `json:"fields,omitempty"`
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("govalid", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		usage(stderr)
		fs.PrintDefaults()
	}
	var (
		rulesPath   string
		lang        string
		first       bool
		firstFields bool
		deep        bool
		yamlInput   bool
	)
	fs.StringVar(&rulesPath, "rules", "", "rule file (YAML or JSON)")
	fs.StringVar(&lang, "lang", "", "message language, overrides GOVALID_LANG")
	fs.BoolVar(&first, "first", false, "stop at the first failing field")
	fs.BoolVar(&firstFields, "first-fields", false, "stop each field at its first failing rule")
	fs.BoolVar(&deep, "deep", false, "report nested fields by full path")
	fs.BoolVar(&yamlInput, "yaml", false, "read the document as YAML regardless of its extension")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if rulesPath == "" || fs.NArg() != 1 {
		fs.Usage()
		return exitUsage
	}

	logger := logrus.New()
	logger.SetOutput(stderr)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Error("loading configuration")
		return exitUsage
	}
	if lang != "" {
		cfg.Lang = lang
	}
	if err := govalid.Configure(cfg); err != nil {
		logger.WithError(err).Error("applying configuration")
		return exitUsage
	}
	logger.SetLevel(logrus.GetLevel())

	s, err := descriptor.LoadFile(rulesPath, govalid.WithLogger(logger))
	if err != nil {
		logger.WithError(err).WithField("rules", rulesPath).Error("loading rules")
		return exitUsage
	}

	docPath := fs.Arg(0)
	data, err := readInput(docPath, stdin)
	if err != nil {
		logger.WithError(err).WithField("document", docPath).Error("reading document")
		return exitUsage
	}

	opts := &govalid.Options{
		First:            first,
		FirstFields:      firstFields,
		ReturnDeepFields: deep,
		SuppressWarning:  true,
	}
	if yamlInput || isYAML(docPath) {
		src, derr := descriptor.DecodeDocument(data)
		if derr != nil {
			logger.WithError(derr).WithField("document", docPath).Error("decoding document")
			return exitUsage
		}
		_, err = s.Validate(ctx, src, opts)
	} else {
		_, err = s.ValidateJSON(ctx, data, opts)
	}

	rep := report{Valid: err == nil}
	if err != nil {
		f, ok := govalid.AsFailure(err)
		if !ok {
			logger.WithError(err).WithField("document", docPath).Error("validating document")
			return exitUsage
		}
		rep.Errors, rep.Fields = f.Errors, f.Fields
	}
	out, err := gojson.MarshalIndent(rep, "", "  ")
	if err != nil {
		logger.WithError(err).Error("encoding report")
		return exitUsage
	}
	fmt.Fprintln(stdout, string(out))
	if !rep.Valid {
		return exitInvalid
	}
	return exitValid
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
