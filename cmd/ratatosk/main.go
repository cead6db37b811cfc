// Package main provides the Ratatosk CLI entry point.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ratatosk-db/ratatosk/pkg/config"
	"github.com/ratatosk-db/ratatosk/pkg/graph"
	"github.com/ratatosk-db/ratatosk/pkg/storage"
)

var version = "0.1.0"

// seedFile is the YAML shape consumed by the seed command.
//
//	nodes:
//	  alice: {label: Person, properties: {name: Alice}}
//	  bob:   {label: Person, properties: {name: Bob}}
//	edges:
//	  - {label: KNOWS, start: alice, end: bob, properties: {since: 2020}}
type seedFile struct {
	Nodes map[string]struct {
		Label      string         `yaml:"label"`
		Properties map[string]any `yaml:"properties"`
	} `yaml:"nodes"`
	Edges []struct {
		Label      string         `yaml:"label"`
		Start      string         `yaml:"start"`
		End        string         `yaml:"end"`
		Properties map[string]any `yaml:"properties"`
	} `yaml:"edges"`
}

func main() {
	var (
		configPath string
		dataDir    string
		inMemory   bool
	)

	loadConfig := func() (*config.Config, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		if dataDir != "" {
			cfg.DataDir = dataDir
		}
		if inMemory {
			cfg.Backend = config.BackendMemory
		}
		return cfg, nil
	}

	openDB := func() (*graph.DB, error) {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}

		var store storage.Store
		switch cfg.Backend {
		case config.BackendMemory:
			store = storage.NewMemoryStore()
		default:
			store, err = storage.NewBadgerStoreWithOptions(storage.BadgerOptions{
				DataDir:    cfg.DataDir,
				InMemory:   cfg.InMemory,
				SyncWrites: cfg.SyncWrites,
			})
			if err != nil {
				return nil, err
			}
		}

		return graph.Open(store, graph.Options{
			CacheCapacity: cfg.CacheCapacity,
			DecodeWorkers: cfg.DecodeWorkers,
		})
	}

	rootCmd := &cobra.Command{
		Use:     "ratatosk",
		Short:   "Ratatosk - embeddable property-graph storage engine",
		Version: version,
		Long: `Ratatosk persists nodes and directed, labeled edges in an ordered
key-value store and answers neighbor and BFS queries over them.`,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to ratatosk.yaml")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "override the data directory")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use the in-memory backend")

	seedCmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Bulk-load a YAML graph description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			var seed seedFile
			if err := yaml.Unmarshal(data, &seed); err != nil {
				return fmt.Errorf("parsing seed file: %w", err)
			}

			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			// Nodes first so edge endpoints resolve, keyed by their
			// seed-file names.
			names := make([]string, 0, len(seed.Nodes))
			specs := make([]graph.NodeSpec, 0, len(seed.Nodes))
			for name, n := range seed.Nodes {
				names = append(names, name)
				specs = append(specs, graph.NodeSpec{Label: n.Label, Properties: n.Properties})
			}
			nodes, err := db.CreateNodesBatch(specs)
			if err != nil {
				return err
			}
			idByName := make(map[string]graph.NodeID, len(nodes))
			for i, node := range nodes {
				idByName[names[i]] = node.ID
				fmt.Printf("node %-12s %s\n", names[i], node.ID)
			}

			edgeSpecs := make([]graph.EdgeSpec, 0, len(seed.Edges))
			for _, e := range seed.Edges {
				start, ok := idByName[e.Start]
				if !ok {
					return fmt.Errorf("edge references unknown node %q", e.Start)
				}
				end, ok := idByName[e.End]
				if !ok {
					return fmt.Errorf("edge references unknown node %q", e.End)
				}
				edgeSpecs = append(edgeSpecs, graph.EdgeSpec{
					Label:      e.Label,
					StartNode:  start,
					EndNode:    end,
					Properties: e.Properties,
				})
			}
			edges, err := db.CreateEdgesBatch(edgeSpecs)
			if err != nil {
				return err
			}
			for _, edge := range edges {
				fmt.Printf("edge %-12s %s -> %s\n", edge.Label, edge.StartNode, edge.EndNode)
			}
			return nil
		},
	}

	neighborsCmd := &cobra.Command{
		Use:   "neighbors <node-id>",
		Short: "List nodes reachable over one outgoing edge",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			neighbors, err := db.Neighbors(graph.NodeID(args[0]))
			if err != nil {
				return err
			}
			for _, n := range neighbors {
				fmt.Printf("%s  %s  %v\n", n.ID, n.Label, n.Properties)
			}
			fmt.Printf("%d neighbor(s)\n", len(neighbors))
			return nil
		},
	}

	var targetLabel string
	bfsCmd := &cobra.Command{
		Use:   "bfs <start-id>",
		Short: "Breadth-first traversal from a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			found, order, err := db.BFS(graph.NodeID(args[0]), targetLabel)
			if err != nil {
				return err
			}
			if targetLabel != "" {
				if found == nil {
					fmt.Printf("no node with label %q reachable\n", targetLabel)
				} else {
					fmt.Printf("found %s  %s  %v\n", found.ID, found.Label, found.Properties)
				}
				return nil
			}
			ids := make([]string, len(order))
			for i, id := range order {
				ids[i] = string(id)
			}
			fmt.Println(strings.Join(ids, "\n"))
			fmt.Printf("%d node(s) visited\n", len(order))
			return nil
		},
	}
	bfsCmd.Flags().StringVar(&targetLabel, "label", "", "stop at the first node with this label")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Print engine cache statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			stats := db.Stats()
			fmt.Printf("node cache: %d hits, %d misses\n", stats.NodeCache.Hits, stats.NodeCache.Misses)
			fmt.Printf("edge cache: %d hits, %d misses\n", stats.EdgeCache.Hits, stats.EdgeCache.Misses)
			return nil
		},
	}

	rootCmd.AddCommand(seedCmd, neighborsCmd, bfsCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
