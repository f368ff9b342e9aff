package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kass/go-ogc-client/pkg/config"
	"github.com/kass/go-ogc-client/pkg/featureindex"
	"github.com/kass/go-ogc-client/pkg/filter"
	"github.com/kass/go-ogc-client/pkg/models"
	"github.com/kass/go-ogc-client/pkg/ows"
	"github.com/kass/go-ogc-client/pkg/postgis"
	"github.com/kass/go-ogc-client/pkg/wfs"
	"github.com/kass/go-ogc-client/pkg/wps"
)

var (
	endpoint   string
	configFile string
	verbose    bool
	logger     = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "ogc",
	Short: "Command-line client for OGC web services",
	Long:  `Query OGC Web Feature Services and run Web Processing Service jobs, with a local R-Tree cache of fetched feature envelopes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			l, err := zap.NewDevelopment()
			if err == nil {
				logger = l
			}
		}
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Print service metadata and available feature types",
	Run:   runCapabilities,
}

var getFeatureCmd = &cobra.Command{
	Use:   "getfeature",
	Short: "Issue a GetFeature query against a WFS endpoint",
	Long:  `Issue a GetFeature query, print or save the response document, and optionally index the returned feature envelopes into a local cache file.`,
	Run:   runGetFeature,
}

var describeTypeCmd = &cobra.Command{
	Use:   "describetype [typename...]",
	Short: "Fetch the schema document for feature types",
	Run:   runDescribeType,
}

var cacheQueryCmd = &cobra.Command{
	Use:   "cache-query",
	Short: "Run a bounding box query against the local feature cache",
	Run:   runCacheQuery,
}

var dbInitCmd = &cobra.Command{
	Use:   "db-init",
	Short: "Create the PostGIS feature store schema and spatial index",
	Long:  `Create the PostGIS feature store schema and spatial index. Drops any existing feature table.`,
	Run:   runDBInit,
}

var dbQueryCmd = &cobra.Command{
	Use:   "db-query",
	Short: "Run a bounding box query against the PostGIS feature store",
	Run:   runDBQuery,
}

var dbStatsCmd = &cobra.Command{
	Use:   "db-stats",
	Short: "Print size and row statistics for the PostGIS feature store",
	Run:   runDBStats,
}

var wpsExecuteCmd = &cobra.Command{
	Use:   "wps-execute",
	Short: "Run a WPS process and poll it to completion",
	Run:   runWPSExecute,
}

var (
	typeName     string
	bboxFlag     string
	geomProperty string
	srsName      string
	filterFile   string
	properties   []string
	maxFeatures  int
	outFile      string
	indexFile    string
	storeDB      bool

	processID    string
	processInput []string
	processOut   string
	pollInterval time.Duration
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "Endpoint alias from the config file, or a service URL")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Endpoint configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	getFeatureCmd.Flags().StringVarP(&typeName, "typename", "t", "", "Feature type to query (required)")
	getFeatureCmd.Flags().StringVarP(&bboxFlag, "bbox", "b", "", "Bounding box filter: minLon,minLat,maxLon,maxLat")
	getFeatureCmd.Flags().StringVarP(&geomProperty, "geometry", "g", "Geometry", "Geometry property name for the bounding box filter")
	getFeatureCmd.Flags().StringVar(&srsName, "srs", "EPSG:4326", "Spatial reference system for the bounding box filter")
	getFeatureCmd.Flags().StringVar(&filterFile, "filter-file", "", "File containing a complete ogc:Filter document")
	getFeatureCmd.Flags().StringSliceVarP(&properties, "property", "p", nil, "Property names to request (default: all)")
	getFeatureCmd.Flags().IntVarP(&maxFeatures, "max-features", "m", 0, "Maximum number of features to request")
	getFeatureCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the response document to a file instead of stdout")
	getFeatureCmd.Flags().StringVarP(&indexFile, "index", "i", "", "Index returned envelopes into this cache file")
	getFeatureCmd.Flags().BoolVar(&storeDB, "store", false, "Store returned envelopes in the PostGIS feature store")
	getFeatureCmd.MarkFlagRequired("typename")

	cacheQueryCmd.Flags().StringVarP(&indexFile, "index", "i", "wfs_cache.gob", "Cache file to query")
	cacheQueryCmd.Flags().StringVarP(&bboxFlag, "bbox", "b", "", "Bounding box: minLon,minLat,maxLon,maxLat (required)")
	cacheQueryCmd.MarkFlagRequired("bbox")

	dbQueryCmd.Flags().StringVarP(&bboxFlag, "bbox", "b", "", "Bounding box: minLon,minLat,maxLon,maxLat (required)")
	dbQueryCmd.MarkFlagRequired("bbox")

	wpsExecuteCmd.Flags().StringVar(&processID, "process", "", "Process identifier (required)")
	wpsExecuteCmd.Flags().StringArrayVar(&processInput, "input", nil, "Literal process input as key=value (repeatable)")
	wpsExecuteCmd.Flags().StringVar(&processOut, "output", "", "Output identifier to request as a stored reference")
	wpsExecuteCmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the process output to this file")
	wpsExecuteCmd.Flags().DurationVar(&pollInterval, "poll", 10*time.Second, "Status polling interval")
	wpsExecuteCmd.MarkFlagRequired("process")

	rootCmd.AddCommand(capabilitiesCmd, getFeatureCmd, describeTypeCmd, cacheQueryCmd, dbInitCmd, dbQueryCmd, dbStatsCmd, wpsExecuteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configFile == "" {
		return nil, nil
	}
	return config.Load(configFile)
}

func resolveEndpoint() (config.Endpoint, error) {
	if endpoint == "" {
		return config.Endpoint{}, fmt.Errorf("no endpoint given (use --endpoint)")
	}

	cfg, err := loadConfig()
	if err != nil {
		return config.Endpoint{}, err
	}
	return cfg.Resolve(endpoint)
}

func openFeatureStore() (*postgis.FeatureStore, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, fmt.Errorf("the feature store needs database settings from a config file (use --config)")
	}

	db := cfg.Database
	return postgis.NewFeatureStore(db.Host, db.User, db.Password, db.DBName, db.Port)
}

func newTransport(ep config.Endpoint) *ows.Transport {
	opts := []ows.TransportOption{ows.WithLogger(logger)}
	if ep.Timeout > 0 {
		opts = append(opts, ows.WithTimeout(ep.Timeout))
	}
	return ows.NewTransport(opts...)
}

func newWFSClient() (*wfs.Client, error) {
	ep, err := resolveEndpoint()
	if err != nil {
		return nil, err
	}

	opts := []wfs.Option{
		wfs.WithTransport(newTransport(ep)),
		wfs.WithLogger(logger),
	}
	if ep.Version != "" {
		opts = append(opts, wfs.WithVersion(ep.Version))
	}
	return wfs.New(ep.URL, opts...), nil
}

func runCapabilities(cmd *cobra.Command, args []string) {
	client, err := newWFSClient()
	if err != nil {
		fatal(err)
	}

	caps, err := client.GetCapabilities(cmd.Context())
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Service: %s (%s)\n", caps.Service.Title, caps.Service.Name)
	if caps.Service.Abstract != "" {
		fmt.Printf("Abstract: %s\n", caps.Service.Abstract)
	}
	fmt.Printf("Version: %s\n", caps.Version)
	fmt.Printf("Feature types (%d):\n", len(caps.FeatureTypes))
	for _, ft := range caps.FeatureTypes {
		fmt.Printf("  %s", ft.Name)
		if ft.Title != "" {
			fmt.Printf(" - %s", ft.Title)
		}
		box := ft.LatLonBoundingBox
		if box.Valid() && box != (models.BoundingBox{}) {
			fmt.Printf(" [%.4f,%.4f %.4f,%.4f]",
				box.BottomLeft.Lon, box.BottomLeft.Lat,
				box.TopRight.Lon, box.TopRight.Lat)
		}
		fmt.Println()
	}
}

func runGetFeature(cmd *cobra.Command, args []string) {
	client, err := newWFSClient()
	if err != nil {
		fatal(err)
	}

	filterXML, err := buildFilter()
	if err != nil {
		fatal(err)
	}

	info, body, err := client.GetFeature(cmd.Context(), wfs.GetFeatureRequest{
		TypeNames:     []string{typeName},
		Filter:        filterXML,
		PropertyNames: properties,
		MaxFeatures:   maxFeatures,
	})
	if err != nil {
		fatal(err)
	}

	if outFile != "" {
		if err := os.WriteFile(outFile, body, 0o644); err != nil {
			fatal(fmt.Errorf("failed to write response: %w", err))
		}
		fmt.Printf("Response written to %s (%d bytes)\n", outFile, len(body))
	} else {
		os.Stdout.Write(body)
	}

	fmt.Fprintf(os.Stderr, "Received %d features of type %s\n", info.NumberOfFeatures, typeName)

	if indexFile != "" {
		if err := indexFeatures(info); err != nil {
			fatal(err)
		}
	}

	if storeDB {
		if err := storeFeatures(info); err != nil {
			fatal(err)
		}
	}
}

func buildFilter() (string, error) {
	if filterFile != "" {
		data, err := os.ReadFile(filterFile)
		if err != nil {
			return "", fmt.Errorf("failed to read filter file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	if bboxFlag == "" {
		return "", nil
	}

	box, err := parseBBox(bboxFlag)
	if err != nil {
		return "", err
	}
	return filter.Render(filter.BBOX(geomProperty, box, srsName)), nil
}

func indexFeatures(info *wfs.FeatureCollectionInfo) error {
	index := featureindex.New()
	if _, err := os.Stat(indexFile); err == nil {
		if err := index.LoadFromFile(indexFile); err != nil {
			return fmt.Errorf("failed to load cache: %w", err)
		}
	}

	indexable := make([]*models.Feature, 0, len(info.Features))
	for i := range info.Features {
		f := info.Features[i]
		if f.Envelope != (models.BoundingBox{}) {
			indexable = append(indexable, &f)
		}
	}

	if err := index.Add(indexable); err != nil {
		return fmt.Errorf("failed to index features: %w", err)
	}
	if err := index.SaveToFile(indexFile); err != nil {
		return fmt.Errorf("failed to save cache: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Indexed %d envelopes into %s (cache size %d)\n",
		len(indexable), indexFile, index.Size())
	return nil
}

func storeFeatures(info *wfs.FeatureCollectionInfo) error {
	store, err := openFeatureStore()
	if err != nil {
		return err
	}
	defer store.Close()

	storable := make([]*models.Feature, 0, len(info.Features))
	for i := range info.Features {
		f := info.Features[i]
		if f.ID != "" && f.Envelope != (models.BoundingBox{}) {
			storable = append(storable, &f)
		}
	}

	if err := store.BulkInsert(storable); err != nil {
		return fmt.Errorf("failed to store features: %w", err)
	}

	count, err := store.Count()
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Stored %d envelopes in PostGIS (%d total)\n", len(storable), count)
	return nil
}

func runDBInit(cmd *cobra.Command, args []string) {
	store, err := openFeatureStore()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	if err := store.InitSchema(); err != nil {
		fatal(err)
	}
	if err := store.CreateSpatialIndex(); err != nil {
		fatal(err)
	}
	fmt.Println("Feature store schema created")
}

func runDBQuery(cmd *cobra.Command, args []string) {
	box, err := parseBBox(bboxFlag)
	if err != nil {
		fatal(err)
	}

	store, err := openFeatureStore()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	features, err := store.QueryBox(box)
	if err != nil {
		fatal(err)
	}

	total, err := store.Count()
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Found %d features in store (%d total)\n", len(features), total)
	for _, f := range features {
		fmt.Printf("  %s %s [%.4f,%.4f %.4f,%.4f]\n", f.TypeName, f.ID,
			f.Envelope.BottomLeft.Lon, f.Envelope.BottomLeft.Lat,
			f.Envelope.TopRight.Lon, f.Envelope.TopRight.Lat)
	}
}

func runDBStats(cmd *cobra.Command, args []string) {
	store, err := openFeatureStore()
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	stats, err := store.Stats()
	if err != nil {
		fatal(err)
	}

	fmt.Println("Feature store statistics:")
	fmt.Printf("  Database size: %v\n", stats["database_size"])
	fmt.Printf("  Table size:    %v\n", stats["table_size"])
	fmt.Printf("  Index size:    %v\n", stats["index_size"])
	fmt.Printf("  Features:      %v\n", stats["row_count"])
}

func runDescribeType(cmd *cobra.Command, args []string) {
	client, err := newWFSClient()
	if err != nil {
		fatal(err)
	}

	schema, err := client.DescribeFeatureType(cmd.Context(), args...)
	if err != nil {
		fatal(err)
	}
	os.Stdout.Write(schema)
}

func runCacheQuery(cmd *cobra.Command, args []string) {
	box, err := parseBBox(bboxFlag)
	if err != nil {
		fatal(err)
	}

	index := featureindex.New()
	if err := index.LoadFromFile(indexFile); err != nil {
		fatal(err)
	}

	features, err := index.SearchBox(box)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Found %d features in cache (%d total)\n", len(features), index.Size())
	for _, f := range features {
		fmt.Printf("  %s %s [%.4f,%.4f %.4f,%.4f]\n", f.TypeName, f.ID,
			f.Envelope.BottomLeft.Lon, f.Envelope.BottomLeft.Lat,
			f.Envelope.TopRight.Lon, f.Envelope.TopRight.Lat)
	}
}

func runWPSExecute(cmd *cobra.Command, args []string) {
	ep, err := resolveEndpoint()
	if err != nil {
		fatal(err)
	}

	client := wps.New(ep.URL, wps.WithTransport(newTransport(ep)), wps.WithLogger(logger))

	inputs := make([]wps.ExecuteInput, 0, len(processInput))
	for _, raw := range processInput {
		key, value, found := strings.Cut(raw, "=")
		if !found {
			fatal(fmt.Errorf("invalid input %q, want key=value", raw))
		}
		inputs = append(inputs, wps.ExecuteInput{Identifier: key, Value: wps.LiteralValue(value)})
	}

	execution, err := client.Execute(cmd.Context(), processID, inputs, processOut)
	if err != nil {
		fatal(err)
	}

	fmt.Printf("Execution %s submitted, status: %s\n", execution.ID, execution.Status)

	if !execution.Complete() {
		fmt.Printf("Polling %s every %v...\n", execution.StatusLocation, pollInterval)
		if err := execution.Wait(cmd.Context(), pollInterval); err != nil {
			fatal(err)
		}
	}

	fmt.Printf("Final status: %s\n", execution.Status)
	for _, ex := range execution.Errors {
		fmt.Fprintf(os.Stderr, "  error %s: %s\n", ex.Code, ex.Text)
	}

	if execution.Succeeded() && len(execution.Outputs) > 0 {
		path, err := execution.FetchOutput(cmd.Context(), outFile)
		if err != nil {
			fatal(err)
		}
		fmt.Printf("Output written to %s\n", path)
	}

	if !execution.Succeeded() {
		os.Exit(1)
	}
}

func parseBBox(s string) (models.BoundingBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return models.BoundingBox{}, fmt.Errorf("invalid bbox %q, want minLon,minLat,maxLon,maxLat", s)
	}

	values := [4]float64{}
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return models.BoundingBox{}, fmt.Errorf("invalid bbox value %q: %w", p, err)
		}
		values[i] = v
	}

	box := models.BoundingBox{
		BottomLeft: models.Location{Lon: values[0], Lat: values[1]},
		TopRight:   models.Location{Lon: values[2], Lat: values[3]},
	}
	if !box.Valid() {
		return models.BoundingBox{}, fmt.Errorf("invalid bbox %q: corners out of order or range", s)
	}
	return box, nil
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
