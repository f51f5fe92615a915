/*
Package reading fetches single files and whole trees from remote or local locations.

	               +-----------+
	   url ------> | Registry  |  first predicate that matches wins
	               +-----+-----+
	                     |
	     +---------------+---------------+
	     |               |               |
	+----+-----+   +-----+----+    +-----+-----+
	|  github  |   |   url    |    | localfile |
	| api/raw  |   |  GET     |    |  disk     |
	+----+-----+   +-----+----+    +-----+-----+
	     |               |               |
	     +------ tar.gz stream ----------+
	                     |
	               +-----+------+
	               | TreeResult | -> Files / Dir / Archive
	               +------------+

🎯 Purpose:
- One Reader contract for every source: Read for a file, ReadTree for a filtered tree
- Error kinds callers can branch on: ErrInput, ErrNotFound, ErrFetch, ErrNoReader
- Archives are streamed once; only entries under the filters are buffered

🔄 Flow:
1. Registry.Lookup parses the URL (absolute paths become file URLs)
2. The matching reader builds its target URL and sends the request
3. ReadTree strips the archive root and applies Match to every entry
4. TreeResult.Dir writes the files in parallel, refusing paths that leave the output dir

🔍 Example:

	reg := reading.NewRegistry(
		reading.Entry{Kind: reading.KindGitHub, Reader: gh, Predicate: reading.HostPredicate("github.com")},
		reading.Entry{Kind: reading.KindFile, Reader: localfile.New(), Predicate: reading.FilePredicate()},
	)
	tree, err := reg.ReadTree(ctx, "https://github.com/backstage/backstage", "master", []string{"docs"})
	if err != nil {
		return err
	}
	dir, err := tree.Dir(ctx, "")
*/
package reading
