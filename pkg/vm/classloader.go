package vm

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	cmap "github.com/orcaman/concurrent-map"
	"golang.org/x/sync/singleflight"

	"github.com/daimatz/minijvm/pkg/classfile"
)

// ClassLoader loads classes by internal name, e.g. "java/lang/Integer".
type ClassLoader interface {
	LoadClass(name string) (*classfile.ClassFile, error)
}

// classCache memoizes loaded classes. Concurrent loads of one name share a
// single parse.
type classCache struct {
	classes cmap.ConcurrentMap
	group   singleflight.Group
}

func newClassCache() *classCache {
	return &classCache{classes: cmap.New()}
}

func (c *classCache) load(name string, fn func() (*classfile.ClassFile, error)) (*classfile.ClassFile, error) {
	if v, ok := c.classes.Get(name); ok {
		return v.(*classfile.ClassFile), nil
	}
	v, err, _ := c.group.Do(name, func() (interface{}, error) {
		if v, ok := c.classes.Get(name); ok {
			return v, nil
		}
		cf, err := fn()
		if err != nil {
			return nil, err
		}
		if cf.Name() != name {
			return nil, fmt.Errorf("%s declares class %s", name, cf.Name())
		}
		c.classes.Set(name, cf)
		return cf, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*classfile.ClassFile), nil
}

// jmodHeaderSize is the length of the "JM\x01\x00" prefix before the zip
// data of a jmod.
const jmodHeaderSize = 4

// JmodClassLoader loads classes from a JDK jmod file.
type JmodClassLoader struct {
	JmodPath string

	cache   *classCache
	once    sync.Once
	openErr error
	files   map[string]*zip.File
}

// NewJmodClassLoader creates a JmodClassLoader. The file is opened on first
// use.
func NewJmodClassLoader(jmodPath string) *JmodClassLoader {
	return &JmodClassLoader{
		JmodPath: jmodPath,
		cache:    newClassCache(),
	}
}

func (cl *JmodClassLoader) open() error {
	cl.once.Do(func() {
		data, err := os.ReadFile(cl.JmodPath)
		if err != nil {
			cl.openErr = fmt.Errorf("jmod: reading %s: %w", cl.JmodPath, err)
			return
		}
		if len(data) < jmodHeaderSize {
			cl.openErr = fmt.Errorf("jmod: %s is too short", cl.JmodPath)
			return
		}
		zipData := data[jmodHeaderSize:]
		zr, err := zip.NewReader(bytes.NewReader(zipData), int64(len(zipData)))
		if err != nil {
			cl.openErr = fmt.Errorf("jmod: opening zip: %w", err)
			return
		}
		cl.files = make(map[string]*zip.File, len(zr.File))
		for _, f := range zr.File {
			cl.files[f.Name] = f
		}
		log.Infof("opened jmod %s (%d entries)", cl.JmodPath, len(cl.files))
	})
	return cl.openErr
}

func (cl *JmodClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	return cl.cache.load(name, func() (*classfile.ClassFile, error) {
		if err := cl.open(); err != nil {
			return nil, err
		}
		target := "classes/" + name + ".class"
		f, ok := cl.files[target]
		if !ok {
			return nil, fmt.Errorf("jmod: class %s not found in %s", name, cl.JmodPath)
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("jmod: opening %s: %w", target, err)
		}
		defer rc.Close()

		cf, err := classfile.Parse(rc)
		if err != nil {
			return nil, fmt.Errorf("jmod: parsing %s: %w", name, err)
		}
		return cf, nil
	})
}

// DirClassLoader loads classes from class path directories, delegating to
// the parent first.
type DirClassLoader struct {
	ClassPath []string
	Parent    ClassLoader

	cache *classCache
}

// NewDirClassLoader creates a DirClassLoader. parent may be nil.
func NewDirClassLoader(classPath []string, parent ClassLoader) *DirClassLoader {
	return &DirClassLoader{
		ClassPath: classPath,
		Parent:    parent,
		cache:     newClassCache(),
	}
}

func (cl *DirClassLoader) LoadClass(name string) (*classfile.ClassFile, error) {
	if cl.Parent != nil {
		if cf, err := cl.Parent.LoadClass(name); err == nil {
			return cf, nil
		}
	}
	return cl.cache.load(name, func() (*classfile.ClassFile, error) {
		for _, dir := range cl.ClassPath {
			path := filepath.Join(dir, filepath.FromSlash(name)+".class")
			cf, err := classfile.ParseFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("user: %w", err)
			}
			return cf, nil
		}
		return nil, fmt.Errorf("user: class %s not found in %s", name, strings.Join(cl.ClassPath, string(os.PathListSeparator)))
	})
}
