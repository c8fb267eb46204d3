package catalog

import "strings"

// FindDistroByName returns the distribution called name. An exact match
// wins; otherwise the first distribution whose lowercase name equals
// strings.ToLower(name) is returned. The fallback goes through a lowercase
// index built at load time, so both paths are O(1).
func (c *Catalog) FindDistroByName(name string) *Distribution {
	if i, ok := c.distroIndex[name]; ok {
		return c.Distributions[i]
	}
	if i, ok := c.lowerIndex[strings.ToLower(name)]; ok {
		return c.Distributions[i]
	}
	return nil
}

// FindMaintainerByID returns the maintainer with the exact id, or nil.
func (c *Catalog) FindMaintainerByID(id string) *Maintainer {
	if i, ok := c.maintainerIndex[id]; ok {
		return c.Maintainers[i]
	}
	return nil
}

// ResolveModule maps a module name to the distribution that ships it.
// Mappings recorded with CacheModuleMapping are consulted first, then the
// module name is tried as a distribution name. ResolveModule never calls
// out to the registry; see enrich.Enricher.ResolveModule for that.
func (c *Catalog) ResolveModule(module string) *Distribution {
	c.modulesMu.RLock()
	distro, ok := c.modules[module]
	c.modulesMu.RUnlock()
	if ok {
		if d := c.FindDistroByName(distro); d != nil {
			return d
		}
	}
	if i, ok := c.distroIndex[module]; ok {
		return c.Distributions[i]
	}
	return nil
}

// CacheModuleMapping records that module is shipped by distro. A later call
// for the same module replaces the mapping.
func (c *Catalog) CacheModuleMapping(module, distro string) {
	c.modulesMu.Lock()
	c.modules[module] = distro
	c.modulesMu.Unlock()
}

// ModuleMapping returns the cached distribution name for module.
func (c *Catalog) ModuleMapping(module string) (string, bool) {
	c.modulesMu.RLock()
	defer c.modulesMu.RUnlock()
	distro, ok := c.modules[module]
	return distro, ok
}
