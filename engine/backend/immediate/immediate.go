package immediate

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-bench/common"
	"github.com/Carmen-Shannon/oxy-bench/engine/backend"
	"github.com/Carmen-Shannon/oxy-bench/engine/camera"
	"github.com/Carmen-Shannon/oxy-bench/engine/settings"
	"github.com/Carmen-Shannon/oxy-bench/engine/sim"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// drawChunk asteroids per draw call. Small on purpose: the point of this
// backend is to measure the cost of many draws with per-draw buffer writes.
const drawChunk = 64

const shaderSource = `
struct FrameData {
	viewProjection : mat4x4f,
}

@group(0) @binding(0) var<uniform> frame : FrameData;
@group(0) @binding(1) var<storage, read> models : array<mat4x4f>;

struct VSOut {
	@builtin(position) position : vec4f,
	@location(0) shade : f32,
}

@vertex
fn vs_main(@builtin(instance_index) instance : u32, @location(0) position : vec3f, @location(1) normal : vec3f) -> VSOut {
	let world = models[instance] * vec4f(position, 1.0);
	var out : VSOut;
	out.position = frame.viewProjection * world;
	let light = normalize(vec3f(0.4, 0.8, 0.2));
	out.shade = max(dot(normalize(normal), light), 0.15);
	return out;
}

@fragment
fn fs_main(in : VSOut) -> @location(0) vec4f {
	return vec4f(vec3f(0.55, 0.5, 0.45) * in.shade, 1.0);
}
`

// immediateBackend renders the field one chunk at a time: every draw call
// re-binds state and is preceded by its own instance-buffer write, modeling
// the legacy-API submission style.
type immediateBackend struct {
	cfg   *settings.Settings
	field *sim.Field

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	surface       *wgpu.Surface
	surfaceFormat wgpu.TextureFormat
	depthView     *wgpu.TextureView
	passDesc      *wgpu.RenderPassDescriptor

	pipeline   *wgpu.RenderPipeline
	bindGroup  *wgpu.BindGroup
	vertexBuf  *wgpu.Buffer
	indexBuf   *wgpu.Buffer
	frameBuf   *wgpu.Buffer
	instBuf    *wgpu.Buffer
	indexCount int
}

var _ backend.Backend = &immediateBackend{}

// New creates the immediate backend: requests an adapter and device and
// uploads the shared mesh. Swap-chain resources are created on the first
// ResizeSwapChain.
//
// Parameters:
//   - field: the asteroid field to render
//   - cfg: the session settings
//
// Returns:
//   - backend.Backend: the backend
//   - error: non-nil when no suitable adapter or device exists
func New(field *sim.Field, cfg *settings.Settings) (backend.Backend, error) {
	b := &immediateBackend{
		cfg:      cfg,
		field:    field,
		instance: wgpu.CreateInstance(nil),
	}

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.WarpAdapter,
	})
	if err != nil {
		return nil, fmt.Errorf("immediate: request adapter: %w", err)
	}
	b.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Immediate Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("immediate: request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()

	if err := b.initBuffers(); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *immediateBackend) Name() string {
	return "Immediate"
}

func (b *immediateBackend) Render(frameTime float32, cam camera.Camera, cfg *settings.Settings) error {
	if b.surface == nil {
		return backend.ErrNoSwapChain
	}

	if cfg.Animate {
		b.field.Update(frameTime, cfg.MultithreadedRendering)
	}
	transforms := b.field.Transforms()

	vp := cam.ViewProjection()
	b.queue.WriteBuffer(b.frameBuf, 0, common.StructToBytes(&vp))

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("immediate: acquire swap chain texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("immediate: create surface view: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("immediate: create command encoder: %w", err)
	}

	b.passDesc.ColorAttachments[0].View = view
	pass := encoder.BeginRenderPass(b.passDesc)
	pass.SetPipeline(b.pipeline)
	pass.SetVertexBuffer(0, b.vertexBuf, 0, wgpu.WholeSize)
	pass.SetIndexBuffer(b.indexBuf, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)

	// One write and one draw per chunk, state re-bound every time.
	matSize := uint64(len(common.StructToBytes(&transforms[0])))
	for start := 0; start < len(transforms); start += drawChunk {
		end := min(start+drawChunk, len(transforms))
		b.queue.WriteBuffer(b.instBuf, uint64(start)*matSize, common.SliceToBytes(transforms[start:end]))
		pass.SetBindGroup(0, b.bindGroup, nil)
		pass.DrawIndexed(uint32(b.indexCount), uint32(end-start), 0, 0, uint32(start))
	}
	pass.End()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		encoder.Release()
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("immediate: finish encoder: %w", err)
	}

	if cfg.SubmitRendering {
		b.queue.Submit(commandBuffer)
	}
	commandBuffer.Release()
	encoder.Release()

	b.surface.Present()
	view.Release()
	surfaceTexture.Release()
	return nil
}

func (b *immediateBackend) ResizeSwapChain(surface backend.Surface, width, height int) error {
	descriptor, ok := surface.(*wgpu.SurfaceDescriptor)
	if !ok || descriptor == nil {
		return fmt.Errorf("immediate: unsupported surface handle %T", surface)
	}
	if b.surface == nil {
		b.surface = b.instance.CreateSurface(descriptor)
	}

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = capabilities.Formats[0]

	presentMode := wgpu.PresentModeImmediate
	if b.cfg.VSync {
		presentMode = wgpu.PresentModeFifo
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	if b.depthView != nil {
		b.depthView.Release()
	}
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Immediate Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("immediate: create depth texture: %w", err)
	}
	b.depthView, err = depthTexture.CreateView(nil)
	if err != nil {
		return fmt.Errorf("immediate: create depth view: %w", err)
	}
	depthTexture.Release()

	b.passDesc = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				LoadOp:  wgpu.LoadOpClear,
				StoreOp: wgpu.StoreOpStore,
				ClearValue: wgpu.Color{
					R: 0.01, G: 0.01, B: 0.02, A: 1.0,
				},
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}

	if b.pipeline == nil {
		if err := b.initPipeline(); err != nil {
			return err
		}
	}
	return nil
}

func (b *immediateBackend) ReleaseSwapChain() {
	if b.depthView != nil {
		b.depthView.Release()
		b.depthView = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	b.passDesc = nil
}

// initBuffers uploads the shared mesh and allocates the per-frame buffers.
func (b *immediateBackend) initBuffers() error {
	vertices, indices := b.field.Mesh()
	b.indexCount = len(indices)

	vertexData := common.SliceToBytes(vertices)
	vertexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Immediate Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("immediate: create vertex buffer: %w", err)
	}
	b.queue.WriteBuffer(vertexBuf, 0, vertexData)
	b.vertexBuf = vertexBuf

	indexData := common.SliceToBytes(indices)
	indexBuf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Immediate Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("immediate: create index buffer: %w", err)
	}
	b.queue.WriteBuffer(indexBuf, 0, indexData)
	b.indexBuf = indexBuf

	var frame mgl32.Mat4
	b.frameBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Immediate Frame Buffer",
		Size:  uint64(len(common.StructToBytes(&frame))),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("immediate: create frame buffer: %w", err)
	}

	b.instBuf, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Immediate Instance Buffer",
		Size:  uint64(b.field.Count()) * uint64(len(common.StructToBytes(&frame))),
		Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("immediate: create instance buffer: %w", err)
	}
	return nil
}

// initPipeline builds the render pipeline and bind group. Deferred to the
// first resize because the surface format is not known earlier.
func (b *immediateBackend) initPipeline() error {
	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Immediate Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: shaderSource,
		},
	})
	if err != nil {
		return fmt.Errorf("immediate: create shader module: %w", err)
	}

	bindGroupLayout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Immediate Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeUniform,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageVertex,
				Buffer: wgpu.BufferBindingLayout{
					Type: wgpu.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("immediate: create bind group layout: %w", err)
	}

	b.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Immediate Bind Group",
		Layout: bindGroupLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: b.frameBuf, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: b.instBuf, Offset: 0, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("immediate: create bind group: %w", err)
	}

	pipelineLayout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Immediate Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	if err != nil {
		return fmt.Errorf("immediate: create pipeline layout: %w", err)
	}

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Immediate Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{
				{
					ArrayStride: 6 * 4,
					StepMode:    wgpu.VertexStepModeVertex,
					Attributes: []wgpu.VertexAttribute{
						{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
						{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
					},
				},
			},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    b.surfaceFormat,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeBack,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLess,
			StencilFront: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
			StencilBack: wgpu.StencilFaceState{
				Compare: wgpu.CompareFunctionAlways,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("immediate: create render pipeline: %w", err)
	}
	return nil
}
