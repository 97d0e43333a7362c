package storage

import (
	"os"
	"path/filepath"
	"strings"

	"findash/src/common"
	"findash/src/config"

	"github.com/joho/godotenv"
)

const (
	OverrideEnv  = "FINANCEPROJ_STORAGE"
	CloudRootEnv = "FINANCEPROJ_CLOUD_ROOT"
)

type Source string

const (
	SourceOverride Source = "override"
	SourceCloud    Source = "cloud"
	SourceLocal    Source = "local"
)

// Root is the storage root chosen for a run. Cloud is empty when no cloud folder
// was resolved.
type Root struct {
	Path   string
	Source Source
	Local  string
	Cloud  string
}

type Resolver struct {
	// Base anchors a relative EnvFile and LocalRoot, so the result does not
	// depend on the working directory.
	Base string
	// EnvFile is the KEY=VALUE dotfile consulted when a variable is not set.
	EnvFile      string
	LocalRoot    string
	CloudRoot    string
	CloudSubpath string
	CloudEnvVars []string
	Getenv       func(string) string

	dotenv map[string]string
}

func NewResolver(c config.StorageConfig) *Resolver {
	return &Resolver{
		Base:         c.BaseDir,
		EnvFile:      c.EnvFile,
		LocalRoot:    c.LocalRoot,
		CloudRoot:    c.CloudRoot,
		CloudSubpath: c.CloudSubpath,
		CloudEnvVars: c.CloudEnvVars,
	}
}

// Resolve picks the override, then the cloud root, then the local root.
func (r *Resolver) Resolve() *Root {
	root := &Root{
		Local: r.local(),
		Cloud: r.cloud(),
	}
	switch override := r.override(); {
	case override != "":
		root.Path, root.Source = override, SourceOverride
	case root.Cloud != "":
		root.Path, root.Source = root.Cloud, SourceCloud
	default:
		root.Path, root.Source = root.Local, SourceLocal
	}
	common.Logger.Sugar().Infof("[config] STORAGE_ROOT = %s (%s)", root.Path, root.Source)
	common.Logger.Sugar().Infof("[config] CLOUD_STORAGE_ROOT = %s", displayPath(root.Cloud))
	common.Logger.Sugar().Infof("[config] LOCAL_STORAGE_ROOT = %s", root.Local)
	return root
}

func (r *Resolver) lookup(key string) string {
	getenv := r.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := strings.TrimSpace(getenv(key)); v != "" {
		return v
	}
	if r.dotenv == nil {
		r.dotenv = map[string]string{}
		if r.EnvFile != "" {
			envFile := r.path(r.EnvFile)
			vals, err := godotenv.Read(envFile)
			if err == nil {
				r.dotenv = vals
			} else if !os.IsNotExist(err) {
				common.Logger.Sugar().Warnf("[config] cannot read %s: %v", envFile, err)
			}
		}
	}
	return strings.TrimSpace(r.dotenv[key])
}

// override is accepted only when it names an existing path.
func (r *Resolver) override() string {
	val := r.lookup(OverrideEnv)
	if val == "" {
		return ""
	}
	if _, err := os.Stat(val); err != nil {
		common.Logger.Sugar().Warnf("[config] %s=%s ignored: %v", OverrideEnv, val, err)
		return ""
	}
	return absPath(val)
}

func (r *Resolver) cloud() string {
	candidate := r.lookup(CloudRootEnv)
	if candidate == "" {
		candidate = r.CloudRoot
	}
	if candidate == "" && r.CloudSubpath != "" {
		for _, key := range r.CloudEnvVars {
			if base := r.lookup(key); base != "" {
				candidate = filepath.Join(base, r.CloudSubpath)
				break
			}
		}
	}
	if candidate == "" {
		return ""
	}
	candidate = absPath(candidate)
	if err := os.MkdirAll(candidate, 0o755); err != nil {
		common.Logger.Sugar().Warnf("[config] cloud root %s unusable: %v", candidate, err)
		return ""
	}
	return candidate
}

func (r *Resolver) local() string {
	return r.path(r.LocalRoot)
}

func (r *Resolver) path(p string) string {
	if r.Base != "" && !filepath.IsAbs(p) {
		return filepath.Join(absPath(r.Base), p)
	}
	return absPath(p)
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func displayPath(p string) string {
	if p == "" {
		return "<none>"
	}
	return p
}
