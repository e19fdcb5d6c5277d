package projectstate

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/afero"
)

const (
	// StateFileName is the file inside a project directory that stores its template state.
	StateFileName = ".cruft.json"

	stateIndentationConstant             = "  "
	stateFilePermissionsConstant         = 0o644
	temporaryFilePatternConstant         = ".cruft-*.tmp"
	mapstructureTagNameConstant          = "mapstructure"
	currentCommitMissingMessageConstant  = "project state does not record a template commit"
	noStateFoundTemplateConstant         = "unable to locate %s in %s"
	stateAlreadyPresentTemplateConstant  = "project state already present at %s"
	resolveProjectPathTemplateConstant   = "failed to resolve project directory %s: %w"
	inspectStateTemplateConstant         = "failed to inspect project state %s: %w"
	readStateTemplateConstant            = "failed to read project state %s: %w"
	parseStateTemplateConstant           = "failed to parse project state %s: %w"
	decodeStateTemplateConstant          = "failed to decode project state: %w"
	encodeStateTemplateConstant          = "failed to encode project state: %w"
	createTemporaryStateTemplateConstant = "failed to create temporary project state in %s: %w"
	writeStateTemplateConstant           = "failed to write project state %s: %w"
)

// ErrCurrentCommitMissing indicates a state file without a recorded template commit.
var ErrCurrentCommitMissing = errors.New(currentCommitMissingMessageConstant)

// NoStateFoundError reports a project directory that lacks a state file.
type NoStateFoundError struct {
	ProjectDir string
}

// Error describes the missing state file.
func (stateError NoStateFoundError) Error() string {
	return fmt.Sprintf(noStateFoundTemplateConstant, StateFileName, stateError.ProjectDir)
}

// StateAlreadyPresentError reports a state file that exists where none was expected.
type StateAlreadyPresentError struct {
	Path string
}

// Error describes the conflicting state file.
func (stateError StateAlreadyPresentError) Error() string {
	return fmt.Sprintf(stateAlreadyPresentTemplateConstant, stateError.Path)
}

// State is the raw project state document.
type State map[string]any

// Record is the typed view of State.
type Record struct {
	Template  string `mapstructure:"template"`
	Commit    string `mapstructure:"commit"`
	Checkout  string `mapstructure:"checkout"`
	Directory string `mapstructure:"directory"`
}

// Store locates, loads, and saves project state on a file system.
type Store struct {
	fileSystem afero.Fs
}

// NewStore constructs a Store. A nil file system falls back to the operating system.
func NewStore(fileSystem afero.Fs) *Store {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &Store{fileSystem: fileSystem}
}

// Locate returns the state file path for projectDir. When mustExist is true the file has to be present,
// otherwise it has to be absent.
func (store *Store) Locate(projectDir string, mustExist bool) (string, error) {
	statePath := filepath.Join(projectDir, StateFileName)

	stateIsFile, inspectError := store.isFile(statePath)
	if inspectError != nil {
		return "", fmt.Errorf(inspectStateTemplateConstant, statePath, inspectError)
	}

	if !mustExist && stateIsFile {
		return "", StateAlreadyPresentError{Path: statePath}
	}
	if mustExist && !stateIsFile {
		absoluteProjectDir, absoluteError := filepath.Abs(projectDir)
		if absoluteError != nil {
			return "", fmt.Errorf(resolveProjectPathTemplateConstant, projectDir, absoluteError)
		}
		return "", NoStateFoundError{ProjectDir: absoluteProjectDir}
	}
	return statePath, nil
}

// Load reads the state document at statePath. Numbers are kept in their textual form.
func (store *Store) Load(statePath string) (State, error) {
	contents, readError := afero.ReadFile(store.fileSystem, statePath)
	if readError != nil {
		return nil, fmt.Errorf(readStateTemplateConstant, statePath, readError)
	}

	decoder := json.NewDecoder(bytes.NewReader(contents))
	decoder.UseNumber()
	state := State{}
	if decodeError := decoder.Decode(&state); decodeError != nil {
		return nil, fmt.Errorf(parseStateTemplateConstant, statePath, decodeError)
	}
	return state, nil
}

// LoadRecord locates, loads, and decodes the state of projectDir.
func (store *Store) LoadRecord(projectDir string) (Record, error) {
	statePath, locateError := store.Locate(projectDir, true)
	if locateError != nil {
		return Record{}, locateError
	}
	state, loadError := store.Load(statePath)
	if loadError != nil {
		return Record{}, loadError
	}
	return Decode(state)
}

// Save replaces the state file at statePath. The previous contents stay intact if writing fails.
func (store *Store) Save(statePath string, state State) error {
	contents, marshalError := Marshal(state)
	if marshalError != nil {
		return marshalError
	}

	directory := filepath.Dir(statePath)
	temporaryFile, createError := afero.TempFile(store.fileSystem, directory, temporaryFilePatternConstant)
	if createError != nil {
		return fmt.Errorf(createTemporaryStateTemplateConstant, directory, createError)
	}
	temporaryPath := temporaryFile.Name()

	renamed := false
	defer func() {
		if !renamed {
			_ = store.fileSystem.Remove(temporaryPath)
		}
	}()

	if _, writeError := temporaryFile.Write(contents); writeError != nil {
		_ = temporaryFile.Close()
		return fmt.Errorf(writeStateTemplateConstant, statePath, writeError)
	}
	if closeError := temporaryFile.Close(); closeError != nil {
		return fmt.Errorf(writeStateTemplateConstant, statePath, closeError)
	}
	if chmodError := store.fileSystem.Chmod(temporaryPath, stateFilePermissionsConstant); chmodError != nil {
		return fmt.Errorf(writeStateTemplateConstant, statePath, chmodError)
	}
	if renameError := store.fileSystem.Rename(temporaryPath, statePath); renameError != nil {
		return fmt.Errorf(writeStateTemplateConstant, statePath, renameError)
	}

	renamed = true
	return nil
}

func (store *Store) isFile(path string) (bool, error) {
	fileInfo, statError := store.fileSystem.Stat(path)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return false, nil
		}
		return false, statError
	}
	return fileInfo.Mode().IsRegular(), nil
}

// Decode maps State onto Record. Keys without a Record field are ignored.
func Decode(state State) (Record, error) {
	var record Record
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: mapstructureTagNameConstant,
		Result:  &record,
	})
	if decoderError != nil {
		return Record{}, fmt.Errorf(decodeStateTemplateConstant, decoderError)
	}
	if decodeError := decoder.Decode(map[string]any(state)); decodeError != nil {
		return Record{}, fmt.Errorf(decodeStateTemplateConstant, decodeError)
	}

	record.Commit = strings.TrimSpace(record.Commit)
	if len(record.Commit) == 0 {
		return Record{}, ErrCurrentCommitMissing
	}
	return record, nil
}

// Marshal renders State with sorted keys, two-space indentation, unescaped non-ASCII text, and a trailing newline.
func Marshal(state State) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", stateIndentationConstant)
	if encodeError := encoder.Encode(map[string]any(state)); encodeError != nil {
		return nil, fmt.Errorf(encodeStateTemplateConstant, encodeError)
	}
	return buffer.Bytes(), nil
}
