// Package resolver finds replacement assets in resource packs.
//
// A Resolver asks a Store for a Location and turns every failure into a
// miss, so callers only see found or not found. The Store shipped here,
// PackStore, stacks packs read through afero: plain directories, and zip
// archives (.zip, .mcpack) opened with zipfs. Packs carry a manifest.json;
// comments in it are tolerated and the header UUID identifies the pack.
//
//	store := resolver.NewPackStore(afero.NewOsFs())
//	if err := store.Mount("packs/hud", "packs/base.mcpack"); err != nil {
//	    return err
//	}
//	loc, _ := resolver.NewLocation("hbui/index.html")
//	data, ok := resolver.New(store).Resolve(loc)
package resolver
