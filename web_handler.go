package main

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jaffee/commandeer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/pivolan/dashboardr/dashboard"
)

// maxUpload предел размера загружаемого файла
const maxUpload = 256 << 20

// server отдаёт собранный сайт и пересобирает его после загрузки данных
type server struct {
	main   *dashboard.Main
	logger *log.Logger
	mu     sync.Mutex
}

func (s *server) routes(output string) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(output)))
	mux.HandleFunc("/upload", s.handleUpload)
	return mux
}

// handleUpload заменяет файл источника данных и запускает сборку
func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name := r.FormValue("source")
	if name == "" {
		http.Error(w, "Error getting source", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	def, err := dashboard.Load(s.main.Definition)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	src, ok := def.Data[name]
	if !ok || src.Path == "" {
		http.Error(w, fmt.Sprintf("unknown file data source %q", name), http.StatusBadRequest)
		return
	}
	if err := replaceFile(src.Path, file); err != nil {
		s.logger.Printf("upload %s: %v", name, err)
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}
	s.logger.Printf("data %s replaced, rebuilding", name)

	res, err := s.main.Run()
	if err != nil {
		s.logger.Printf("rebuild: %v", err)
		http.Error(w, "Rebuild failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	fmt.Fprintf(w, "File uploaded successfully\nbuilt: %s\nunchanged: %s\n",
		strings.Join(res.Built, ", "), strings.Join(res.Skipped, ", "))
}

// replaceFile пишет во временный файл рядом и переименовывает поверх
func replaceFile(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), path), "replace data file")
}

// NewServeCommand раздаёт каталог сборки по HTTP
func NewServeCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var addr string
	m := dashboard.NewMain()
	logger := log.New(stderr, "dashboardr: ", log.LstdFlags)
	m.Logger = logger
	serveCommand := &cobra.Command{
		Use:   "serve",
		Short: "serve the built dashboard and rebuild it on data uploads",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := &server{main: m, logger: logger}
			s.mu.Lock()
			res, err := m.Run()
			s.mu.Unlock()
			if err != nil {
				return err
			}
			output := m.Output
			if output == "" {
				def, err := dashboard.Load(m.Definition)
				if err != nil {
					return err
				}
				output = def.Output
			}
			fmt.Fprint(stdout, FormatResult(res))
			logger.Printf("listen on: http://localhost%s", addr)
			return http.ListenAndServe(addr, s.routes(output))
		},
	}
	flags := serveCommand.Flags()
	flags.StringVar(&addr, "addr", ":8005", "Listen address.")
	if err := commandeer.Flags(flags, m); err != nil {
		panic(err)
	}
	return serveCommand
}

func init() {
	subcommandFns["serve"] = NewServeCommand
}
