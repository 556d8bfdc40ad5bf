package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.dedis.ch/kyber/v4"
)

func mustParseHex(hexStr string) []byte {
	b, err := hex.DecodeString(strings.TrimPrefix(hexStr, "0x"))
	if err != nil {
		panic(err)
	}
	return b
}

func mustParseHexScalar(c *p256Curve, hexStr string) kyber.Scalar {
	return c.Scalar().SetBytes(mustParseHex(hexStr))
}

func TestParseHexScalar(t *testing.T) {
	sHex := "0x2ee57912099d31560b3a44b1184b9b4866e904c49d12ac5042c97dca461b1a5f"
	w := mustParseHexScalar(newP256Curve(), sHex)
	wData, err := w.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, sHex, "0x"+hex.EncodeToString(wData))
}

// RFC 9382 Appendix B test vectors.
var rfc9382Vectors = []struct {
	name      string
	idA       string
	idB       string
	wHex      string
	xHex      string
	yHex      string
	pAHex     string
	pBHex     string
	kHex      string
	ttHex     string
	hashTTHex string
}{
	{
		name:      "vector 1",
		idA:       "server",
		idB:       "client",
		wHex:      "0x2ee57912099d31560b3a44b1184b9b4866e904c49d12ac5042c97dca461b1a5f",
		xHex:      "0x43dd0fd7215bdcb482879fca3220c6a968e66d70b1356cac18bb26c84a78d729",
		yHex:      "0xdcb60106f276b02606d8ef0a328c02e4b629f84f89786af5befb0bc75b6e66be",
		pAHex:     "0x04a56fa807caaa53a4d28dbb9853b9815c61a411118a6fe516a8798434751470f9010153ac33d0d5f2047ffdb1a3e42c9b4e6be662766e1eeb4116988ede5f912c",
		pBHex:     "0x0406557e482bd03097ad0cbaa5df82115460d951e3451962f1eaf4367a420676d09857ccbc522686c83d1852abfa8ed6e4a1155cf8f1543ceca528afb591a1e0b7",
		kHex:      "0x0412af7e89717850671913e6b469ace67bd90a4df8ce45c2af19010175e37eed69f75897996d539356e2fa6a406d528501f907e04d97515fbe83db277b715d3325",
		ttHex:     "0x06000000000000007365727665720600000000000000636c69656e74410000000000000004a56fa807caaa53a4d28dbb9853b9815c61a411118a6fe516a8798434751470f9010153ac33d0d5f2047ffdb1a3e42c9b4e6be662766e1eeb4116988ede5f912c41000000000000000406557e482bd03097ad0cbaa5df82115460d951e3451962f1eaf4367a420676d09857ccbc522686c83d1852abfa8ed6e4a1155cf8f1543ceca528afb591a1e0b741000000000000000412af7e89717850671913e6b469ace67bd90a4df8ce45c2af19010175e37eed69f75897996d539356e2fa6a406d528501f907e04d97515fbe83db277b715d332520000000000000002ee57912099d31560b3a44b1184b9b4866e904c49d12ac5042c97dca461b1a5f",
		hashTTHex: "0x0e0672dc86f8e45565d338b0540abe6915bdf72e2b35b5c9e5663168e960a91b",
	},
	{
		name:      "vector 2",
		idA:       "",
		idB:       "client",
		wHex:      "0x0548d8729f730589e579b0475a582c1608138ddf7054b73b5381c7e883e2efae",
		xHex:      "0x403abbe3b1b4b9ba17e3032849759d723939a27a27b9d921c500edde18ed654b",
		yHex:      "0x903023b6598908936ea7c929bd761af6039577a9c3f9581064187c3049d87065",
		pAHex:     "0x04a897b769e681c62ac1c2357319a3d363f610839c4477720d24cbe32f5fd85f44fb92ba966578c1b712be6962498834078262caa5b441ecfa9d4a9485720e918a",
		pBHex:     "0x04e0f816fd1c35e22065d5556215c097e799390d16661c386e0ecc84593974a61b881a8c82327687d0501862970c64565560cb5671f696048050ca66ca5f8cc7fc",
		kHex:      "0x048f83ec9f6e4f87cc6f9dc740bdc2769725f923364f01c84148c049a39a735ebda82eac03e00112fd6a5710682767cff5361f7e819e53d8d3c3a2922e0d837aa6",
		ttHex:     "0x00000000000000000600000000000000636c69656e74410000000000000004a897b769e681c62ac1c2357319a3d363f610839c4477720d24cbe32f5fd85f44fb92ba966578c1b712be6962498834078262caa5b441ecfa9d4a9485720e918a410000000000000004e0f816fd1c35e22065d5556215c097e799390d16661c386e0ecc84593974a61b881a8c82327687d0501862970c64565560cb5671f696048050ca66ca5f8cc7fc4100000000000000048f83ec9f6e4f87cc6f9dc740bdc2769725f923364f01c84148c049a39a735ebda82eac03e00112fd6a5710682767cff5361f7e819e53d8d3c3a2922e0d837aa620000000000000000548d8729f730589e579b0475a582c1608138ddf7054b73b5381c7e883e2efae",
		hashTTHex: "0x642f05c473c2cd79909f9a841e2f30a70bf89b18180af97353ba198789c2b963",
	},
	{
		name:      "vector 3",
		idA:       "server",
		idB:       "",
		wHex:      "0x626e0cdc7b14c9db3e52a0b1b3a768c98e37852d5db30febe0497b14eae8c254",
		xHex:      "0x07adb3db6bc623d3399726bfdbfd3d15a58ea776ab8a308b00392621291f9633",
		yHex:      "0xb6a4fc8dbb629d4ba51d6f91ed1532cf87adec98f25dd153a75accafafedec16",
		pAHex:     "0x04f88fb71c99bfffaea370966b7eb99cd4be0ff1a7d335caac4211c4afd855e2e15a873b298503ad8ba1d9cbb9a392d2ba309b48bfd7879aefd0f2cea6009763b0",
		pBHex:     "0x040c269d6be017dccb15182ac6bfcd9e2a14de019dd587eaf4bdfd353f031101e7cca177f8eb362a6e83e7d5e729c0732e1b528879c086f39ba0f31a9661bd34db",
		kHex:      "0x0445ee233b8ecb51ebd6e7da3f307e88a1616bae2166121221fdc0dadb986afaf3ec8a988dc9c626fa3b99f58a7ca7c9b844bb3e8dd9554aafc5b53813504c1cbe",
		ttHex:     "0x06000000000000007365727665720000000000000000410000000000000004f88fb71c99bfffaea370966b7eb99cd4be0ff1a7d335caac4211c4afd855e2e15a873b298503ad8ba1d9cbb9a392d2ba309b48bfd7879aefd0f2cea6009763b04100000000000000040c269d6be017dccb15182ac6bfcd9e2a14de019dd587eaf4bdfd353f031101e7cca177f8eb362a6e83e7d5e729c0732e1b528879c086f39ba0f31a9661bd34db41000000000000000445ee233b8ecb51ebd6e7da3f307e88a1616bae2166121221fdc0dadb986afaf3ec8a988dc9c626fa3b99f58a7ca7c9b844bb3e8dd9554aafc5b53813504c1cbe2000000000000000626e0cdc7b14c9db3e52a0b1b3a768c98e37852d5db30febe0497b14eae8c254",
		hashTTHex: "0x005184ff460da2ce59062c87733c299c3521297d736598fc0a1127600efa1afb",
	},
	{
		name:      "vector 4",
		idA:       "",
		idB:       "",
		wHex:      "0x7bf46c454b4c1b25799527d896508afd5fc62ef4ec59db1efb49113063d70cca",
		xHex:      "0x8cef65df64bb2d0f83540c53632de911b5b24b3eab6cc74a97609fd659e95473",
		yHex:      "0xd7a66f64074a84652d8d623a92e20c9675c61cb5b4f6a0063e4648a2fdc02d53",
		pAHex:     "0x04a65b367a3f613cf9f0654b1b28a1e3a8a40387956c8ba6063e8658563890f46ca1ef6a676598889fc28de2950ab8120b79a5ef1ea4c9f44bc98f585634b46d66",
		pBHex:     "0x04589f13218822710d98d8b2123a079041052d9941b9cf88c6617ddb2fcc0494662eea8ba6b64692dc318250030c6af045cb738bc81ba35b043c3dcb46adf6f58d",
		kHex:      "0x041a3c03d51b452537ca2a1fea6110353c6d5ed483c4f0f86f4492ca3f378d40a994b4477f93c64d928edbbcd3e85a7c709b7ea73ee97986ce3d1438e135543772",
		ttHex:     "0x00000000000000000000000000000000410000000000000004a65b367a3f613cf9f0654b1b28a1e3a8a40387956c8ba6063e8658563890f46ca1ef6a676598889fc28de2950ab8120b79a5ef1ea4c9f44bc98f585634b46d66410000000000000004589f13218822710d98d8b2123a079041052d9941b9cf88c6617ddb2fcc0494662eea8ba6b64692dc318250030c6af045cb738bc81ba35b043c3dcb46adf6f58d4100000000000000041a3c03d51b452537ca2a1fea6110353c6d5ed483c4f0f86f4492ca3f378d40a994b4477f93c64d928edbbcd3e85a7c709b7ea73ee97986ce3d1438e13554377220000000000000007bf46c454b4c1b25799527d896508afd5fc62ef4ec59db1efb49113063d70cca",
		hashTTHex: "0xfc6374762ba5cf11f4b2caa08b2cd1b9907ae0e26e8d6234318d91583cd74c86",
	},
}

// TestP256RFCVectors checks messages, K, TT and Hash(TT) against RFC 9382
// Appendix B with w, x and y injected.
func TestP256RFCVectors(t *testing.T) {
	for _, tt := range rfc9382Vectors {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewP256Group(true, []byte(tt.idA), []byte(tt.idB), nil)
			require.NoError(t, err)
			server, err := NewP256Group(false, []byte(tt.idA), []byte(tt.idB), nil)
			require.NoError(t, err)

			client.w = mustParseHexScalar(client.curve, tt.wHex)
			client.scalar = mustParseHexScalar(client.curve, tt.xHex)
			server.w = mustParseHexScalar(server.curve, tt.wHex)
			server.scalar = mustParseHexScalar(server.curve, tt.yHex)

			pA, err := client.generate()
			require.NoError(t, err)
			require.Equal(t, mustParseHex(tt.pAHex), pA)

			pB, err := server.generate()
			require.NoError(t, err)
			require.Equal(t, mustParseHex(tt.pBHex), pB)

			for _, side := range []struct {
				g    *P256Group
				peer []byte
			}{{client, pB}, {server, pA}} {
				transcript, err := side.g.transcript(side.peer)
				require.NoError(t, err)
				require.Equal(t, mustParseHex(tt.kHex), transcript.K)
				require.Equal(t, mustParseHex(tt.ttHex), transcript.Bytes())

				hashTT, err := side.g.ProcessMessage(side.peer)
				require.NoError(t, err)
				require.Equal(t, mustParseHex(tt.hashTTHex), hashTT)
			}
		})
	}
}

func TestP256Exchange(t *testing.T) {
	password := []byte("password123")

	client, err := NewP256Group(true, []byte("client"), []byte("server"), nil)
	require.NoError(t, err)
	server, err := NewP256Group(false, []byte("client"), []byte("server"), nil)
	require.NoError(t, err)

	pA, err := client.GenerateMessage(password)
	require.NoError(t, err)
	require.Len(t, pA, P256MessageSize)
	pB, err := server.GenerateMessage(password)
	require.NoError(t, err)

	kA, err := client.ProcessMessage(pB)
	require.NoError(t, err)
	kB, err := server.ProcessMessage(pA)
	require.NoError(t, err)
	require.Len(t, kA, sha256.Size)
	require.Equal(t, kA, kB)

	_, err = client.ProcessMessage(pB)
	require.ErrorIs(t, err, ErrState)
}

func TestP256InvalidPassword(t *testing.T) {
	client, err := NewP256Group(true, nil, nil, nil)
	require.NoError(t, err)
	server, err := NewP256Group(false, nil, nil, nil)
	require.NoError(t, err)

	pA, err := client.GenerateMessage([]byte("password123"))
	require.NoError(t, err)
	pB, err := server.GenerateMessage([]byte("wrongpassword"))
	require.NoError(t, err)

	kA, err := client.ProcessMessage(pB)
	require.NoError(t, err)
	kB, err := server.ProcessMessage(pA)
	require.NoError(t, err)
	require.NotEqual(t, kA, kB)
}

func TestP256RejectsMalformedMessages(t *testing.T) {
	g, err := NewP256Group(true, nil, nil, nil)
	require.NoError(t, err)

	_, err = g.ProcessMessage(make([]byte, P256MessageSize))
	require.ErrorIs(t, err, ErrState)

	_, err = g.GenerateMessage([]byte("pw"))
	require.NoError(t, err)

	_, err = g.ProcessMessage(make([]byte, 33))
	require.ErrorIs(t, err, ErrMessageSize)

	offCurve := make([]byte, P256MessageSize)
	offCurve[0] = 0x04
	offCurve[64] = 0x01
	_, err = g.ProcessMessage(offCurve)
	require.ErrorIs(t, err, ErrInvalidPoint)
}

func TestP256Wipe(t *testing.T) {
	g, err := NewP256Group(false, nil, nil, nil)
	require.NoError(t, err)
	_, err = g.GenerateMessage([]byte("pw"))
	require.NoError(t, err)

	w, scalar := g.w, g.scalar
	g.Wipe()

	require.Nil(t, g.w)
	require.Nil(t, g.scalar)
	require.True(t, w.Equal(g.curve.Scalar().Zero()))
	require.True(t, scalar.Equal(g.curve.Scalar().Zero()))
	require.Equal(t, make([]byte, P256MessageSize), g.myMsg)
}
