package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newNetworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "network",
		Short: "Show the resolved network, its contracts and the node's chain id",
		Args:  cobra.NoArgs,
		RunE:  runNetwork,
	}
	addChainFlags(cmd)
	return cmd
}

func runNetwork(cmd *cobra.Command, _ []string) error {
	ctx, s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	chainID, err := s.client.GetChainID(ctx)
	if err != nil {
		return err
	}
	block := s.blockNumber(ctx)
	s.logger.Info("network reachable", zap.String("network", s.cfg.Network.Name), zap.String("chain_id", chainID.String()))

	return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
		"network":      s.cfg.Network.Name,
		"rpc":          s.cfg.Network.RPCURL,
		"explorer":     s.cfg.Network.Explorer,
		"chain_id":     chainID.String(),
		"block_number": block,
		"contracts":    s.cfg.Network.Contracts,
		"tokens":       s.registry.Symbols(),
	})
}
