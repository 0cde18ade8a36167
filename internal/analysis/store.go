package analysis

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/opencontainers/go-digest"
	"github.com/sirupsen/logrus"

	"github.com/mica-lang/micals/internal/lang"
)

// stdModuleName is the module every document program depends on.
const stdModuleName = "std"

// mainModuleName is the module a user document is parsed into.
const mainModuleName = "main"

// DocumentContext pairs a Document with the Program compiled from it. The
// Program is never older than the Document: whenever a caller reads a
// context, the Program was compiled from the current Document.Text at the
// time of the most recent update that finished processing.
type DocumentContext struct {
	Document    Document
	Program     *lang.Program
	Diagnostics []lang.Diagnostic
}

type stdlibEntry struct {
	program     *lang.Program
	fingerprint digest.Digest
	diags       []lang.Diagnostic
}

// Store owns the map from AbsoluteURL to DocumentContext and the
// standard-library program cache. All operations serialize through one
// mutex: no reader ever observes a half-updated document/program pair, and
// an update is not complete until its rebuild finished.
type Store struct {
	mu sync.Mutex

	log        *logrus.Entry
	stdlibRoot string // configured stdlib root directory ("" = embedded prelude)

	docs           map[AbsoluteURL]*DocumentContext
	stdlib         map[string]*stdlibEntry // keyed by stdlib root path
	workspaceRoots []AbsoluteURL
}

// NewStore creates a store. stdlibRoot may be empty, in which case the
// embedded prelude serves as the standard library.
func NewStore(stdlibRoot string, log *logrus.Entry) *Store {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	if stdlibRoot != "" {
		stdlibRoot = filepath.Clean(stdlibRoot)
	}
	return &Store{
		log:        log,
		stdlibRoot: stdlibRoot,
		docs:       make(map[AbsoluteURL]*DocumentContext),
		stdlib:     make(map[string]*stdlibEntry),
	}
}

// Initialize records the workspace roots. It is idempotent and does not
// touch documents.
func (s *Store) Initialize(rootURL AbsoluteURL, folders []AbsoluteURL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.workspaceRoots = s.workspaceRoots[:0]
	if !rootURL.IsZero() {
		s.workspaceRoots = append(s.workspaceRoots, rootURL)
	}
	s.workspaceRoots = append(s.workspaceRoots, folders...)
}

// RegisterDocument inserts a new DocumentContext for an opened document,
// building its Program. Build problems are recorded as diagnostics on the
// context; registration itself never fails.
func (s *Store) RegisterDocument(url AbsoluteURL, version int32, text string) *DocumentContext {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(url, version, text)
}

// UpdateDocument applies a batch of edits to an open document and
// synchronously rebuilds its Program before returning. Returns
// ErrDocumentNotOpened when the document was never registered and
// ErrInvalidChangeRange when an edit does not resolve; in both cases the
// stored state is untouched.
func (s *Store) UpdateDocument(url AbsoluteURL, version int32, changes []TextEdit) (*DocumentContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, ok := s.docs[url]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotOpened, url)
	}
	doc, err := ctx.Document.ApplyChanges(version, changes)
	if err != nil {
		return nil, err
	}

	// An edit inside the active stdlib root invalidates the cached stdlib
	// program so the next build recompiles it.
	if root := s.stdlibRootFor(url); root != "" {
		delete(s.stdlib, root)
	}

	return s.register(url, doc.Version, doc.Text), nil
}

// UnregisterDocument removes a document's context. Subsequent lookups
// re-register implicitly from disk.
func (s *Store) UnregisterDocument(url AbsoluteURL) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, url)

	if root := s.stdlibRootFor(url); root != "" {
		// The open buffer stopped shadowing the on-disk stdlib file.
		delete(s.stdlib, root)
	}
}

// DocumentContext returns the current context for a URI. If the document was
// never opened it is implicitly registered from disk at version 0: editor
// clients do not guarantee that didOpen precedes feature requests. Fails
// with ErrDocumentNotOpened only when the URI cannot be read from disk.
func (s *Store) DocumentContext(url AbsoluteURL) (*DocumentContext, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx, ok := s.docs[url]; ok {
		return ctx, nil
	}
	path, err := url.Filename()
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDocumentNotOpened, url)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentNotOpened, url, err)
	}
	s.log.WithField("uri", url.String()).Debug("implicit document registration")
	return s.register(url, 0, string(content)), nil
}

// OpenDocuments returns the URLs of all registered documents.
func (s *Store) OpenDocuments() []AbsoluteURL {
	s.mu.Lock()
	defer s.mu.Unlock()
	urls := make([]AbsoluteURL, 0, len(s.docs))
	for u := range s.docs {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i].String() < urls[j].String() })
	return urls
}

// StandardLibraryProgram returns the stdlib program for a root path,
// rebuilding it when the content fingerprint of the root's source set no
// longer matches the cached entry. Open buffers shadow on-disk files.
func (s *Store) StandardLibraryProgram(root string) *lang.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	prog, _ := s.stdlibProgram(root)
	return prog
}

// register builds and stores a context. Caller holds s.mu.
func (s *Store) register(url AbsoluteURL, version int32, text string) *DocumentContext {
	doc := Document{URL: url, Version: version, Text: text}
	// Replace before building so the stdlib overlay sees the new text.
	ctx := &DocumentContext{Document: doc}
	s.docs[url] = ctx
	prog, diags := s.buildProgramForDocument(url, text)
	ctx.Program = prog
	ctx.Diagnostics = diags
	return ctx
}

// buildProgramForDocument compiles a document's text against the standard
// library. Any stage failure is logged and tolerated: the partially-built
// program is still returned so features degrade instead of erroring.
// Caller holds s.mu.
func (s *Store) buildProgramForDocument(url AbsoluteURL, text string) (*lang.Program, []lang.Diagnostic) {
	if root := s.stdlibRootFor(url); root != "" {
		// The document is itself part of the standard library.
		prog, diags := s.stdlibProgram(root)
		return prog, diagsForURL(diags, url)
	}

	stdProg, _ := s.stdlibProgram(s.stdlibRoot)
	prog := stdProg.Extend()
	main := prog.Module(mainModuleName)

	_, parseDiags := main.AddSource(url.String(), text)
	diags := append([]lang.Diagnostic(nil), parseDiags...)

	var stdScope *lang.Scope
	if std := prog.Module(stdModuleName); std != nil {
		stdScope = std.Scope()
	}
	scopeDiags, errored := lang.AssignScopes(main, stdScope)
	diags = append(diags, scopeDiags...)
	if errored {
		s.log.WithField("uri", url.String()).Debug("scope assignment reported errors")
	}
	typeDiags, errored := lang.AssignTypes(main)
	diags = append(diags, typeDiags...)
	if errored {
		s.log.WithField("uri", url.String()).Debug("type assignment reported errors")
	}

	return prog, diags
}

// stdlibProgram returns the (possibly cached) standard library program for a
// root path. An empty root selects the embedded prelude. Caller holds s.mu.
func (s *Store) stdlibProgram(root string) (*lang.Program, []lang.Diagnostic) {
	files, contents := s.stdlibSources(root)
	fp := fingerprint(files, contents)
	if entry, ok := s.stdlib[root]; ok && entry.fingerprint == fp {
		return entry.program, entry.diags
	}

	prog := lang.NewProgram()
	std := prog.Module(stdModuleName)
	var diags []lang.Diagnostic
	for i, file := range files {
		_, parseDiags := std.AddSource(file, contents[i])
		diags = append(diags, parseDiags...)
	}
	scopeDiags, _ := lang.AssignScopes(std, nil)
	diags = append(diags, scopeDiags...)
	typeDiags, _ := lang.AssignTypes(std)
	diags = append(diags, typeDiags...)
	if len(diags) > 0 {
		s.log.WithFields(logrus.Fields{"root": root, "diagnostics": len(diags)}).
			Warn("standard library built with diagnostics")
	}

	s.stdlib[root] = &stdlibEntry{program: prog, fingerprint: fp, diags: diags}
	return prog, diags
}

// stdlibSources lists the stdlib source set for a root in sorted order,
// preferring open-buffer content over disk so edits to stdlib files are
// visible. Caller holds s.mu.
func (s *Store) stdlibSources(root string) (files []string, contents []string) {
	if root == "" {
		return []string{lang.PreludeURL}, []string{lang.Prelude}
	}
	matches, err := doublestar.Glob(os.DirFS(root), "**/*.mica")
	if err != nil || len(matches) == 0 {
		if err != nil {
			s.log.WithField("root", root).WithError(err).Warn("cannot enumerate stdlib sources")
		}
		return []string{lang.PreludeURL}, []string{lang.Prelude}
	}
	sort.Strings(matches)
	for _, rel := range matches {
		path := filepath.Join(root, rel)
		url := URLFromPath(path)
		var text string
		if ctx, ok := s.docs[url]; ok {
			text = ctx.Document.Text
		} else {
			raw, err := os.ReadFile(path)
			if err != nil {
				s.log.WithField("file", path).WithError(err).Warn("cannot read stdlib source")
				continue
			}
			text = string(raw)
		}
		files = append(files, url.String())
		contents = append(contents, text)
	}
	if len(files) == 0 {
		return []string{lang.PreludeURL}, []string{lang.Prelude}
	}
	return files, contents
}

// stdlibRootFor returns the stdlib root the URL lies under, or "". A stdlib
// root is the configured root directory or any ancestor directory containing
// a prelude marker file. Caller holds s.mu.
func (s *Store) stdlibRootFor(url AbsoluteURL) string {
	path, err := url.Filename()
	if err != nil {
		return ""
	}
	if s.stdlibRoot != "" && pathWithin(path, s.stdlibRoot) {
		return s.stdlibRoot
	}
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		if _, err := os.Stat(filepath.Join(dir, lang.PreludeFileName)); err == nil {
			return dir
		}
		if parent := filepath.Dir(dir); parent == dir {
			return ""
		}
	}
}

// pathWithin reports whether path is inside dir.
func pathWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// fingerprint computes a content digest over a stdlib source set. Cached
// stdlib entries are valid only while this digest matches.
func fingerprint(files, contents []string) digest.Digest {
	hasher := digest.SHA256.Digester()
	for i, file := range files {
		_, _ = hasher.Hash().Write([]byte(file))
		_, _ = hasher.Hash().Write([]byte{0})
		_, _ = hasher.Hash().Write([]byte(contents[i]))
		_, _ = hasher.Hash().Write([]byte{0})
	}
	return hasher.Digest()
}

// diagsForURL filters a diagnostic set to those in the given document.
func diagsForURL(diags []lang.Diagnostic, url AbsoluteURL) []lang.Diagnostic {
	target := url.String()
	var out []lang.Diagnostic
	for _, d := range diags {
		if d.Container != nil && d.Container.URL == target {
			out = append(out, d)
		}
	}
	return out
}
