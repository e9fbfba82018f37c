package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"restlab/collection"
	"restlab/config"
	"restlab/convert"
	"restlab/resolve"
	"restlab/runner"
	"restlab/storage"
	"restlab/web"

	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	formatFlag string
	inputFile  string
	outputFile string
	folderID   string
	requestID  string
	prettyFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "restlab",
	Short: "RESTLab - API client collection manager",
	Long: `Manage hierarchical API request collections with folder-level config
inheritance. Imports and exports RESTLab, Postman v2.1, and Thunder Client
collections, executes requests, and renders equivalent curl commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yaml)")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(curlCmd)
	rootCmd.AddCommand(listFoldersCmd)
	rootCmd.AddCommand(clearCmd)
}

// openWorkspace loads config, opens the store, and rebuilds the forest.
// Callers own closing the returned store.
func openWorkspace() (*config.Config, storage.Store, *storage.SideTables, *collection.Forest) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration:", err)
	}

	db, err := storage.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	tables := storage.NewSideTables(db)
	forest, err := tables.LoadForest()
	if err != nil {
		log.Fatal("Failed to load collections:", err)
	}

	return cfg, db, tables, forest
}

func runServer() {
	cfg, db, tables, forest := openWorkspace()
	defer db.Close()

	server := web.NewServer(cfg, tables, forest)
	if err := server.Start(); err != nil {
		log.Fatal("Server failed:", err)
	}
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a collection file",
	Long:  `Import a RESTLab, Postman v2.1, or Thunder Client collection file. The format is auto-detected unless --format is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		raw, err := os.ReadFile(inputFile)
		if err != nil {
			log.Fatal("Failed to read input file:", err)
		}

		result, err := convert.ImportCollection(string(raw), convert.Format(formatFlag))
		if err != nil {
			log.Fatal("Import failed: ", err)
		}

		_, db, tables, forest := openWorkspace()
		defer db.Close()

		if err := tables.MergeImport(forest, result.Folders, result.Requests, result.FolderConfigs); err != nil {
			log.Fatal("Failed to store imported collection:", err)
		}

		for _, root := range result.Folders {
			fmt.Printf("Imported collection '%s' (%s)\n", root.Name, root.ID)
		}
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a folder subtree",
	Long:  `Export a folder and everything beneath it as a RESTLab, Postman v2.1, or Thunder Client collection.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, db, tables, forest := openWorkspace()
		defer db.Close()

		format := convert.Format(formatFlag)
		if format == "" {
			format = convert.Format(cfg.Export.Format)
		}
		pretty := prettyFlag || cfg.Export.PrettyPrint

		snapshot := storage.NewSnapshot(forest, tables)
		out, err := convert.ExportCollection(forest, snapshot, folderID, format, pretty)
		if err != nil {
			log.Fatal("Export failed: ", err)
		}

		if outputFile == "" {
			fmt.Println(out)
			return
		}
		if err := os.WriteFile(outputFile, []byte(out), 0644); err != nil {
			log.Fatal("Failed to write output file:", err)
		}
		fmt.Printf("Folder '%s' exported to '%s'\n", folderID, outputFile)
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Execute a stored request",
	Long:  `Execute a stored request with its effective folder configuration and print the response.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, db, tables, forest := openWorkspace()
		defer db.Close()

		req, folderCfg := loadRequest(tables, forest, requestID)

		engine := runner.NewEngine(time.Duration(cfg.Request.TimeoutSeconds) * time.Second)
		engine.UserAgent = cfg.Request.UserAgent

		response := engine.Execute(context.Background(), runner.Build(req, folderCfg))

		out, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			log.Fatal("Failed to render response:", err)
		}
		fmt.Println(string(out))
	},
}

var curlCmd = &cobra.Command{
	Use:   "curl",
	Short: "Print the curl equivalent of a stored request",
	Long:  `Render the curl command equivalent to executing a stored request with its effective folder configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, db, tables, forest := openWorkspace()
		defer db.Close()

		req, folderCfg := loadRequest(tables, forest, requestID)
		fmt.Println(runner.Curl(req, folderCfg))
	},
}

var listFoldersCmd = &cobra.Command{
	Use:   "list-folders",
	Short: "List all stored collections",
	Long:  `List every folder tree in the store with its requests.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, db, _, forest := openWorkspace()
		defer db.Close()

		roots := forest.Roots()
		if len(roots) == 0 {
			fmt.Println("No collections found.")
			return
		}
		for _, root := range roots {
			printFolder(root, 0)
		}
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete a folder subtree",
	Long:  `Delete a folder, everything beneath it, and all associated stored configuration.`,
	Run: func(cmd *cobra.Command, args []string) {
		_, db, tables, forest := openWorkspace()
		defer db.Close()

		folderIDs, requestIDs, err := forest.DeleteFolder(folderID)
		if err != nil {
			log.Fatal("Failed to delete folder:", err)
		}
		if err := tables.PurgeEntities(folderIDs, requestIDs); err != nil {
			log.Fatal("Failed to purge stored configuration:", err)
		}
		if err := tables.SaveForest(forest); err != nil {
			log.Fatal("Failed to save collections:", err)
		}

		fmt.Printf("Deleted %d folder(s) and %d request(s)\n", len(folderIDs), len(requestIDs))
	},
}

func loadRequest(tables *storage.SideTables, forest *collection.Forest, id string) (collection.Request, collection.FolderConfig) {
	req, ok, err := tables.RequestConfig(id)
	if err != nil {
		log.Fatal("Failed to load request:", err)
	}
	if !ok {
		summary, found := forest.Request(id)
		if !found {
			log.Fatalf("Request not found: %s", id)
		}
		req = summary
	}

	snapshot := storage.NewSnapshot(forest, tables)
	folderCfg, err := resolve.New(snapshot).Resolve(req.FolderID)
	if err != nil {
		log.Fatal("Failed to resolve folder config:", err)
	}
	return req, folderCfg
}

func printFolder(folder *collection.Folder, depth int) {
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	fmt.Printf("%s%s  (%s)\n", indent, folder.Name, folder.ID)
	for _, req := range folder.Requests {
		fmt.Printf("%s  %-7s %s  (%s)\n", indent, req.Method, req.Name, req.ID)
	}
	for _, sub := range folder.Subfolders {
		printFolder(sub, depth+1)
	}
}

func init() {
	importCmd.Flags().StringVar(&inputFile, "input", "", "collection file to import")
	importCmd.Flags().StringVar(&formatFlag, "format", "", "format hint: native, postman, or thunder")
	importCmd.MarkFlagRequired("input")

	exportCmd.Flags().StringVar(&folderID, "folder", "", "folder id to export")
	exportCmd.Flags().StringVar(&formatFlag, "format", "", "target format: native, postman, or thunder")
	exportCmd.Flags().StringVar(&outputFile, "output", "", "output file path (default stdout)")
	exportCmd.Flags().BoolVar(&prettyFlag, "pretty", false, "pretty-print the exported JSON")
	exportCmd.MarkFlagRequired("folder")

	sendCmd.Flags().StringVar(&requestID, "request", "", "request id to execute")
	sendCmd.MarkFlagRequired("request")

	curlCmd.Flags().StringVar(&requestID, "request", "", "request id to render")
	curlCmd.MarkFlagRequired("request")

	clearCmd.Flags().StringVar(&folderID, "folder", "", "folder id to delete")
	clearCmd.MarkFlagRequired("folder")
}
