package gitrepo

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant           = "ssh://"
	httpsProtocolPrefixConstant         = "https://"
	httpProtocolPrefixConstant          = "http://"
	gitProtocolPrefixConstant           = "git://"
	gitPlusPrefixConstant               = "git+"
	fileProtocolPrefixConstant          = "file://"
	gitUserPrefixConstant               = "git@"
	sshUserDelimiterConstant            = "@"
	sshPathDelimiterConstant            = ":"
	pathSeparatorConstant               = "/"
	gitSuffixConstant                   = ".git"
	remoteURLParseErrorTemplateConstant = "%s: %s"
	requiredValueMessageConstant        = "value required"
	invalidRemoteURLMessageConstant     = "invalid remote url"
)

// RemoteProtocol enumerates supported git remote protocols.
type RemoteProtocol string

// Supported remote protocols.
const (
	RemoteProtocolSSH   RemoteProtocol = RemoteProtocol("ssh")
	RemoteProtocolHTTPS RemoteProtocol = RemoteProtocol("https")
	RemoteProtocolHTTP  RemoteProtocol = RemoteProtocol("http")
	RemoteProtocolGit   RemoteProtocol = RemoteProtocol("git")
)

// ReferenceKind distinguishes local checkouts from remote repositories.
type ReferenceKind string

// Reference kinds.
const (
	ReferenceKindLocal  ReferenceKind = ReferenceKind("local")
	ReferenceKindRemote ReferenceKind = ReferenceKind("remote")
)

// hostAbbreviations maps cookiecutter repository abbreviations to their hosts.
var hostAbbreviations = map[string]string{
	"gh:": "github.com",
	"gl:": "gitlab.com",
	"bb:": "bitbucket.org",
}

// RemoteURL represents a structured git remote URL.
type RemoteURL struct {
	Protocol   RemoteProtocol
	Host       string
	Owner      string
	Repository string
}

// String renders the remote as host/owner/repository.
func (remote RemoteURL) String() string {
	return strings.Join([]string{remote.Host, remote.Owner, remote.Repository}, pathSeparatorConstant)
}

// Reference is a classified template repository reference.
type Reference struct {
	Raw       string
	Kind      ReferenceKind
	LocalPath string
	Remote    RemoteURL
}

// RemoteURLParseError indicates a remote string could not be parsed.
type RemoteURLParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteURLParseError) Error() string {
	return fmt.Sprintf(remoteURLParseErrorTemplateConstant, parseError.Input, parseError.Message)
}

// ParseReference classifies a template reference. Anything without a recognised remote prefix is a local path.
func ParseReference(rawReference string) (Reference, error) {
	trimmedReference := strings.TrimSpace(rawReference)
	if len(trimmedReference) == 0 {
		return Reference{}, RemoteURLParseError{Input: rawReference, Message: requiredValueMessageConstant}
	}

	if strings.HasPrefix(trimmedReference, fileProtocolPrefixConstant) {
		return Reference{Raw: rawReference, Kind: ReferenceKindLocal, LocalPath: strings.TrimPrefix(trimmedReference, fileProtocolPrefixConstant)}, nil
	}
	if !isRemote(trimmedReference) {
		return Reference{Raw: rawReference, Kind: ReferenceKindLocal, LocalPath: trimmedReference}, nil
	}

	remote, parseError := ParseRemoteURL(trimmedReference)
	if parseError != nil {
		return Reference{}, parseError
	}
	return Reference{Raw: rawReference, Kind: ReferenceKindRemote, Remote: remote}, nil
}

// ParseRemoteURL converts a textual remote URL into a structured representation.
func ParseRemoteURL(remote string) (RemoteURL, error) {
	trimmedRemote := strings.TrimPrefix(strings.TrimSpace(remote), gitPlusPrefixConstant)
	if len(trimmedRemote) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: requiredValueMessageConstant}
	}

	for abbreviation, host := range hostAbbreviations {
		if strings.HasPrefix(trimmedRemote, abbreviation) {
			return parsePathRemote(RemoteProtocolHTTPS, host+pathSeparatorConstant+strings.TrimPrefix(trimmedRemote, abbreviation))
		}
	}

	switch {
	case strings.HasPrefix(trimmedRemote, sshProtocolPrefixConstant):
		return parseSSHRemote(strings.TrimPrefix(trimmedRemote, sshProtocolPrefixConstant), pathSeparatorConstant)
	case strings.HasPrefix(trimmedRemote, gitUserPrefixConstant):
		return parseSSHRemote(trimmedRemote, sshPathDelimiterConstant)
	case strings.HasPrefix(trimmedRemote, httpsProtocolPrefixConstant):
		return parsePathRemote(RemoteProtocolHTTPS, strings.TrimPrefix(trimmedRemote, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, httpProtocolPrefixConstant):
		return parsePathRemote(RemoteProtocolHTTP, strings.TrimPrefix(trimmedRemote, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmedRemote, gitProtocolPrefixConstant):
		return parsePathRemote(RemoteProtocolGit, strings.TrimPrefix(trimmedRemote, gitProtocolPrefixConstant))
	}

	return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
}

func isRemote(reference string) bool {
	candidate := strings.TrimPrefix(reference, gitPlusPrefixConstant)
	for abbreviation := range hostAbbreviations {
		if strings.HasPrefix(candidate, abbreviation) {
			return true
		}
	}
	for _, prefix := range []string{sshProtocolPrefixConstant, gitUserPrefixConstant, httpsProtocolPrefixConstant, httpProtocolPrefixConstant, gitProtocolPrefixConstant} {
		if strings.HasPrefix(candidate, prefix) {
			return true
		}
	}
	return false
}

// parseSSHRemote splits host from path at hostSeparator: "/" for ssh:// URLs, ":" for scp-style remotes.
func parseSSHRemote(remote string, hostSeparator string) (RemoteURL, error) {
	userSplitIndex := strings.Index(remote, sshUserDelimiterConstant)
	if userSplitIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	hostAndPath := remote[userSplitIndex+1:]

	separatorIndex := strings.Index(hostAndPath, hostSeparator)
	if separatorIndex == -1 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}

	remoteURL, parseError := splitOwnerAndRepository(hostAndPath[separatorIndex+1:])
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	remoteURL.Protocol = RemoteProtocolSSH
	remoteURL.Host = hostAndPath[:separatorIndex]
	return remoteURL, nil
}

func parsePathRemote(protocol RemoteProtocol, remote string) (RemoteURL, error) {
	host, path, found := strings.Cut(strings.TrimSuffix(remote, pathSeparatorConstant), pathSeparatorConstant)
	if !found || len(host) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: remote, Message: invalidRemoteURLMessageConstant}
	}
	remoteURL, parseError := splitOwnerAndRepository(path)
	if parseError != nil {
		return RemoteURL{}, parseError
	}
	remoteURL.Protocol = protocol
	remoteURL.Host = host
	return remoteURL, nil
}

// splitOwnerAndRepository keeps nested groups in the owner, as GitLab subgroups require.
func splitOwnerAndRepository(path string) (RemoteURL, error) {
	separatorIndex := strings.LastIndex(path, pathSeparatorConstant)
	if separatorIndex <= 0 {
		return RemoteURL{}, RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}
	repository := strings.TrimSuffix(path[separatorIndex+1:], gitSuffixConstant)
	if len(repository) == 0 {
		return RemoteURL{}, RemoteURLParseError{Input: path, Message: invalidRemoteURLMessageConstant}
	}
	return RemoteURL{Owner: path[:separatorIndex], Repository: repository}, nil
}
